package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vncsmyrnk/pollster/internal/adapters/repository/memory"
	"github.com/vncsmyrnk/pollster/internal/core/domain"
	"github.com/vncsmyrnk/pollster/internal/core/services"
)

type recordingBroadcaster struct {
	mu     sync.Mutex
	events []domain.Event
}

func (b *recordingBroadcaster) Publish(_ context.Context, event domain.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, event)
}

func (b *recordingBroadcaster) names() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, 0, len(b.events))
	for _, e := range b.events {
		out = append(out, e.EventName())
	}
	return out
}

type testServer struct {
	handler http.Handler
	events  *recordingBroadcaster
	tokens  map[string]string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	log, _ := test.NewNullLogger()

	users := memory.NewUserRepository(
		domain.User{ID: "alice", Name: "Alice", Verified: true},
		domain.User{ID: "bob", Name: "Bob", Verified: true},
	)
	events := &recordingBroadcaster{}
	mutator := services.NewPollMutator(memory.NewPollRepository(), events, services.WithLogger(log))
	auth := services.NewAuthService(users, "test-secret")

	handler := NewHandler(RouterConfig{
		PollHandler:    NewPollHandler(services.NewPollService(mutator, users, "http://polls.test"), log),
		VoteHandler:    NewVoteHandler(services.NewVoteService(mutator), log),
		CommentHandler: NewCommentHandler(services.NewCommentService(mutator, users), log),
		UserHandler:    NewUserHandler(services.NewUserService(users), log),
		Auth:           Identify(auth, log),
		AllowedOrigins: []string{"*"},
		Logger:         log,
	})

	tokens := map[string]string{}
	for _, u := range []domain.User{{ID: "alice", Name: "Alice"}, {ID: "bob", Name: "Bob"}} {
		token, err := auth.IssueAccessToken(&u, time.Hour)
		require.NoError(t, err)
		tokens[u.ID] = token
	}
	return &testServer{handler: handler, events: events, tokens: tokens}
}

type request struct {
	method string
	path   string
	user   string
	ip     string
	body   interface{}
}

func (s *testServer) do(t *testing.T, req request) (int, map[string]interface{}) {
	t.Helper()
	var body bytes.Buffer
	if req.body != nil {
		require.NoError(t, json.NewEncoder(&body).Encode(req.body))
	}
	r := httptest.NewRequest(req.method, req.path, &body)
	r.Header.Set("Content-Type", "application/json")
	if req.user != "" {
		r.Header.Set("Authorization", "Bearer "+s.tokens[req.user])
	}
	if req.ip != "" {
		r.Header.Set("X-Forwarded-For", req.ip)
	}

	w := httptest.NewRecorder()
	s.handler.ServeHTTP(w, r)

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return w.Code, out
}

func errorMessage(t *testing.T, body map[string]interface{}) string {
	t.Helper()
	e, ok := body["error"].(map[string]interface{})
	require.True(t, ok, "expected an error body, got %v", body)
	return e["message"].(string)
}

func (s *testServer) createPoll(t *testing.T, user string, extra map[string]interface{}) string {
	t.Helper()
	body := map[string]interface{}{
		"issue":    "Tabs or spaces?",
		"choices":  []string{"Tabs", "Spaces"},
		"keywords": "code",
	}
	for k, v := range extra {
		body[k] = v
	}
	status, out := s.do(t, request{method: http.MethodPost, path: "/api/poll/create", user: user, body: body})
	require.Equal(t, http.StatusOK, status, out)
	assert.Equal(t, "Your poll has been posted!", out["message"])
	return out["pollId"].(string)
}

func (s *testServer) view(t *testing.T, pollID string, req request) map[string]interface{} {
	t.Helper()
	req.method = http.MethodGet
	req.path = "/api/poll/view/" + pollID
	status, out := s.do(t, req)
	require.Equal(t, http.StatusOK, status, out)
	return out
}

func choiceID(t *testing.T, view map[string]interface{}, i int) string {
	t.Helper()
	choices := view["choices"].([]interface{})
	return choices[i].(map[string]interface{})["choiceId"].(string)
}

func TestCreateAndViewPoll(t *testing.T) {
	s := newTestServer(t)
	pollID := s.createPoll(t, "alice", nil)

	view := s.view(t, pollID, request{ip: "198.51.100.7"})
	assert.Equal(t, "http://polls.test/poll/view/"+pollID, view["pollUrl"])
	assert.Equal(t, "Alice", view["authorName"])
	assert.Equal(t, false, view["isAuthor"])
	assert.Equal(t, false, view["hasVoted"])
	assert.Nil(t, view["choiceVotedFor"])
	assert.Len(t, view["choices"], 2)

	view = s.view(t, pollID, request{user: "alice"})
	assert.Equal(t, true, view["isAuthor"])

	assert.Equal(t, []string{domain.EventNewPoll}, s.events.names())
}

func TestCreatePollErrors(t *testing.T) {
	s := newTestServer(t)

	t.Run("anonymous", func(t *testing.T) {
		status, out := s.do(t, request{method: http.MethodPost, path: "/api/poll/create", body: map[string]interface{}{}})
		assert.Equal(t, http.StatusUnauthorized, status)
		assert.Equal(t, "You are not logged in.", errorMessage(t, out))
	})

	t.Run("invalid token", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/api/poll/recent", nil)
		r.Header.Set("Authorization", "Bearer nonsense")
		w := httptest.NewRecorder()
		s.handler.ServeHTTP(w, r)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "Your login token is not valid. Please log in.")
	})

	t.Run("validation details", func(t *testing.T) {
		status, out := s.do(t, request{
			method: http.MethodPost,
			path:   "/api/poll/create",
			user:   "alice",
			body:   map[string]interface{}{"choices": []string{"only one"}},
		})
		assert.Equal(t, http.StatusBadRequest, status)
		e := out["error"].(map[string]interface{})
		assert.Equal(t, "There were validation errors in the poll you submitted.", e["message"])
		assert.Contains(t, e["details"], "Please enter an issue.")
		assert.Contains(t, e["details"], "The poll must contain at least two choices.")
		assert.Contains(t, e["details"], "Polls must have at least one keyword.")
	})

	t.Run("malformed body", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/api/poll/create", bytes.NewBufferString("{"))
		r.Header.Set("Authorization", "Bearer "+s.tokens["alice"])
		w := httptest.NewRecorder()
		s.handler.ServeHTTP(w, r)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestVoting(t *testing.T) {
	s := newTestServer(t)
	pollID := s.createPoll(t, "alice", nil)
	choice := choiceID(t, s.view(t, pollID, request{}), 0)
	vote := func(req request) (int, map[string]interface{}) {
		req.method = http.MethodPut
		req.path = "/api/poll/vote/" + pollID
		return s.do(t, req)
	}

	status, out := vote(request{ip: "198.51.100.7", body: map[string]string{"choiceId": choice}})
	require.Equal(t, http.StatusOK, status, out)
	assert.Equal(t, "Your vote has been cast!", out["message"])

	status, out = vote(request{ip: "198.51.100.7", body: map[string]string{"choiceId": choice}})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "You already voted on this poll!", errorMessage(t, out))

	status, _ = vote(request{user: "bob", body: map[string]string{"choiceId": choice}})
	assert.Equal(t, http.StatusOK, status)

	status, out = vote(request{user: "alice", body: map[string]string{"choiceId": choice}})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "You are the author of this poll!", errorMessage(t, out))

	status, out = vote(request{ip: "198.51.100.8", body: map[string]string{"choiceId": "nope"}})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "A choice with the given ID was not found on this poll.", errorMessage(t, out))

	view := s.view(t, pollID, request{ip: "198.51.100.7"})
	assert.Equal(t, true, view["hasVoted"])
	assert.Equal(t, choice, view["choiceVotedFor"])
	assert.Equal(t, float64(2), view["choices"].([]interface{})[0].(map[string]interface{})["votes"])

	status, out = s.do(t, request{method: http.MethodPut, path: "/api/poll/vote/missing", body: map[string]string{"choiceId": choice}})
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "A poll with this ID was not found.", errorMessage(t, out))
}

func TestVotingRequiresLogin(t *testing.T) {
	s := newTestServer(t)
	pollID := s.createPoll(t, "alice", map[string]interface{}{"requiresLogin": true})
	choice := choiceID(t, s.view(t, pollID, request{}), 1)

	status, out := s.do(t, request{method: http.MethodPut, path: "/api/poll/vote/" + pollID, ip: "203.0.113.1", body: map[string]string{"choiceId": choice}})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "You need to be logged in to vote on this poll.", errorMessage(t, out))

	status, _ = s.do(t, request{method: http.MethodPut, path: "/api/poll/vote/" + pollID, user: "bob", body: map[string]string{"choiceId": choice}})
	assert.Equal(t, http.StatusOK, status)
}

func TestAddChoice(t *testing.T) {
	s := newTestServer(t)
	pollID := s.createPoll(t, "alice", map[string]interface{}{"canAddExtraChoices": true})

	status, out := s.do(t, request{method: http.MethodPut, path: "/api/poll/addChoice/" + pollID, user: "bob", body: map[string]string{"body": "Both"}})
	require.Equal(t, http.StatusOK, status, out)
	assert.Equal(t, "Your choice has been added!", out["message"])
	assert.NotEmpty(t, out["choiceId"])

	view := s.view(t, pollID, request{user: "bob"})
	assert.Equal(t, out["choiceId"], view["choiceVotedFor"])
	assert.Len(t, view["choices"], 3)

	status, out = s.do(t, request{method: http.MethodPut, path: "/api/poll/addChoice/" + pollID, user: "bob", body: map[string]string{"body": "Neither"}})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "You already voted on this poll!", errorMessage(t, out))

	status, _ = s.do(t, request{method: http.MethodPut, path: "/api/poll/addChoice/" + pollID, ip: "203.0.113.1", body: map[string]string{"body": "Neither"}})
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestComments(t *testing.T) {
	s := newTestServer(t)
	pollID := s.createPoll(t, "alice", nil)

	status, out := s.do(t, request{method: http.MethodPost, path: "/api/poll/comment/" + pollID, user: "bob", body: map[string]string{"body": "Spaces!"}})
	require.Equal(t, http.StatusOK, status, out)
	assert.Equal(t, "Your comment has been posted!", out["message"])
	commentID := out["commentId"].(string)

	status, out = s.do(t, request{method: http.MethodGet, path: "/api/poll/comments/" + pollID})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, out["lastPage"])
	comments := out["comments"].([]interface{})
	require.Len(t, comments, 1)
	assert.Equal(t, "Bob", comments[0].(map[string]interface{})["authorName"])

	status, _ = s.do(t, request{method: http.MethodPut, path: "/api/poll/editComment/" + pollID, user: "bob", body: map[string]string{"commentId": commentID, "body": "Tabs!"}})
	assert.Equal(t, http.StatusOK, status)

	status, out = s.do(t, request{method: http.MethodPut, path: "/api/poll/removeComment/" + pollID, user: "alice", body: map[string]string{"commentId": commentID}})
	require.Equal(t, http.StatusOK, status, out)
	assert.Equal(t, "Your comment has been removed!", out["message"])

	status, out = s.do(t, request{method: http.MethodPut, path: "/api/poll/removeComment/" + pollID, user: "alice", body: map[string]string{"commentId": commentID}})
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "A comment with the given ID was not found on this poll.", errorMessage(t, out))

	status, out = s.do(t, request{method: http.MethodPost, path: "/api/poll/comment/" + pollID, user: "bob", body: map[string]string{"body": ""}})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Please enter a comment.", errorMessage(t, out))

	assert.Equal(t, []string{
		domain.EventNewPoll,
		domain.EventPostComment,
		domain.EventEditComment,
		domain.EventRemoveComment,
	}, s.events.names())
}

func TestCreatePollKeywords(t *testing.T) {
	tests := []struct {
		name     string
		keywords interface{}
		want     string
	}{
		{"free text", "cats dogs", "cats dogs"},
		{"padded text", "  cats dogs ", "cats dogs"},
		{"list of words", []string{"cats", "dogs"}, "cats dogs"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t)
			pollID := s.createPoll(t, "alice", map[string]interface{}{"issue": "Which pet?", "keywords": tt.keywords})

			view := s.view(t, pollID, request{})
			assert.Equal(t, tt.want, view["searchKeywords"])

			status, out := s.do(t, request{method: http.MethodGet, path: "/api/poll/search?query=dogs"})
			require.Equal(t, http.StatusOK, status, out)
			assert.Len(t, out["polls"], 1)
		})
	}

	t.Run("blank text", func(t *testing.T) {
		s := newTestServer(t)
		status, out := s.do(t, request{
			method: http.MethodPost,
			path:   "/api/poll/create",
			user:   "alice",
			body:   map[string]interface{}{"issue": "Which pet?", "choices": []string{"Cat", "Dog"}, "keywords": "   "},
		})
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, []interface{}{"Polls must have at least one keyword."}, out["error"].(map[string]interface{})["details"])
	})

	t.Run("wrong shape", func(t *testing.T) {
		s := newTestServer(t)
		status, out := s.do(t, request{
			method: http.MethodPost,
			path:   "/api/poll/create",
			user:   "alice",
			body:   map[string]interface{}{"issue": "Which pet?", "choices": []string{"Cat", "Dog"}, "keywords": 7},
		})
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, "The request body could not be read.", errorMessage(t, out))
	})
}

func TestEditAndRemovePoll(t *testing.T) {
	s := newTestServer(t)
	pollID := s.createPoll(t, "alice", nil)
	view := s.view(t, pollID, request{})

	edit := map[string]interface{}{
		"issue":         "Tabs, spaces or both?",
		"keywords":      []string{"code", "style"},
		"editedChoices": []map[string]string{{"choiceId": choiceID(t, view, 0), "body": "Hard tabs"}},
	}
	status, out := s.do(t, request{method: http.MethodPut, path: "/api/poll/edit/" + pollID, user: "bob", body: edit})
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "You are not the author of this poll.", errorMessage(t, out))

	status, out = s.do(t, request{method: http.MethodPut, path: "/api/poll/edit/" + pollID, user: "alice", body: edit})
	require.Equal(t, http.StatusOK, status, out)
	assert.Equal(t, "Your poll has been revised!", out["message"])

	view = s.view(t, pollID, request{})
	assert.Equal(t, "Tabs, spaces or both?", view["issue"])
	assert.Equal(t, true, view["edited"])
	assert.Equal(t, "code style", view["searchKeywords"])

	status, _ = s.do(t, request{method: http.MethodDelete, path: "/api/poll/removePoll/" + pollID, user: "bob"})
	assert.Equal(t, http.StatusForbidden, status)

	status, out = s.do(t, request{method: http.MethodDelete, path: "/api/poll/removePoll/" + pollID, user: "alice"})
	require.Equal(t, http.StatusOK, status, out)
	assert.Equal(t, "Your poll has been removed!", out["message"])

	status, _ = s.do(t, request{method: http.MethodGet, path: "/api/poll/view/" + pollID})
	assert.Equal(t, http.StatusNotFound, status)
}

func TestPollLists(t *testing.T) {
	s := newTestServer(t)

	status, out := s.do(t, request{method: http.MethodGet, path: "/api/poll/recent"})
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "No polls were found.", errorMessage(t, out))
	assert.Nil(t, out["error"].(map[string]interface{})["details"])

	s.createPoll(t, "alice", nil)
	s.createPoll(t, "bob", map[string]interface{}{"issue": "Best pizza topping?", "keywords": "food"})

	status, out = s.do(t, request{method: http.MethodGet, path: "/api/poll/recent"})
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, out["polls"], 2)
	assert.Equal(t, true, out["lastPage"])

	status, out = s.do(t, request{method: http.MethodGet, path: "/api/poll/recent?page=3"})
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, []interface{}{"Try searching in a lower page."}, out["error"].(map[string]interface{})["details"])

	for _, path := range []string{
		"/api/poll/recent?page=461168601842738791",
		"/api/poll/recent?page=9223372036854775807",
		"/api/poll/hot?page=922337203685477581",
		"/api/poll/search?query=pizza&page=461168601842738791",
		"/api/poll/by/alice?page=461168601842738791",
	} {
		status, out = s.do(t, request{method: http.MethodGet, path: path})
		assert.Equal(t, http.StatusNotFound, status, path)
		assert.NotNil(t, out["error"], path)
	}

	status, out = s.do(t, request{method: http.MethodGet, path: "/api/poll/search?query=pizza"})
	require.Equal(t, http.StatusOK, status)
	polls := out["polls"].([]interface{})
	require.Len(t, polls, 1)
	assert.Equal(t, "Bob", polls[0].(map[string]interface{})["authorName"])

	status, out = s.do(t, request{method: http.MethodGet, path: "/api/poll/search?query=weather&page=1"})
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "Your search did not yield any results.", errorMessage(t, out))
	assert.Equal(t, []interface{}{"Try searching again in a lower page."}, out["error"].(map[string]interface{})["details"])

	status, out = s.do(t, request{method: http.MethodGet, path: "/api/poll/search?query=%20"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Please enter something to search for.", errorMessage(t, out))

	status, out = s.do(t, request{method: http.MethodGet, path: "/api/poll/by/alice"})
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, out["polls"], 1)

	status, out = s.do(t, request{method: http.MethodGet, path: "/api/poll/by/carol"})
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "This user has not posted any polls.", errorMessage(t, out))

	status, out = s.do(t, request{method: http.MethodGet, path: "/api/poll/hot"})
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, out["polls"], 2)
}

func TestGetMe(t *testing.T) {
	s := newTestServer(t)

	r := httptest.NewRequest(http.MethodGet, "/api/user/me", nil)
	r.AddCookie(&http.Cookie{Name: accessTokenCookie, Value: s.tokens["bob"]})
	w := httptest.NewRecorder()
	s.handler.ServeHTTP(w, r)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"name":"Bob"`)

	status, _ := s.do(t, request{method: http.MethodGet, path: "/api/user/me"})
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	status, out := s.do(t, request{method: http.MethodGet, path: "/health"})
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", out["status"])
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{"forwarded for first entry", map[string]string{"X-Forwarded-For": "203.0.113.9, 10.0.0.1"}, "10.0.0.2:5000", "203.0.113.9"},
		{"real ip", map[string]string{"X-Real-IP": "203.0.113.10"}, "10.0.0.2:5000", "203.0.113.10"},
		{"remote host", nil, "192.0.2.4:1234", "192.0.2.4"},
		{"remote without port", nil, "192.0.2.5", "192.0.2.5"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, clientIP(r))
		})
	}
}
