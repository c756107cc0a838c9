package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/wasapjg/teg-engine/engine"
	"github.com/wasapjg/teg-engine/game"
	"github.com/wasapjg/teg-engine/store"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	m := engine.NewManager(store.NewMemStore(), zerolog.Nop(), 0)
	t.Cleanup(m.Shutdown)
	return New(m, game.DefaultOptions(), zerolog.Nop()).Router()
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

type gameRef struct {
	code     string
	playerID string
}

func createGame(t *testing.T, r *gin.Engine) gameRef {
	t.Helper()
	w := doJSON(t, r, http.MethodPost, "/games", gin.H{
		"userId": "u0", "name": "Alice", "gameName": "Friday night",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var resp struct {
		PlayerID string        `json:"playerId"`
		Snapshot game.Snapshot `json:"snapshot"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Snapshot.Code, 6)
	return gameRef{code: resp.Snapshot.Code, playerID: resp.PlayerID}
}

func joinGame(t *testing.T, r *gin.Engine, code, userID, name string) string {
	t.Helper()
	w := doJSON(t, r, http.MethodPost, "/games/"+code+"/join", gin.H{
		"userId": userID, "name": name,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp struct {
		PlayerID string `json:"playerId"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.PlayerID
}

func TestCreateGame(t *testing.T) {
	r := newTestRouter(t)

	t.Run("creates with defaults", func(t *testing.T) {
		ref := createGame(t, r)
		w := doJSON(t, r, http.MethodGet, "/games/"+ref.code, nil)
		require.Equal(t, http.StatusOK, w.Code)
		var snap game.Snapshot
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &snap))
		require.Equal(t, game.StatusWaiting, snap.Status)
		require.Equal(t, "Friday night", snap.Name)
		require.Len(t, snap.Players, 1)
	})

	t.Run("rejects missing fields", func(t *testing.T) {
		w := doJSON(t, r, http.MethodPost, "/games", gin.H{"name": "no user id"})
		require.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("rejects invalid configuration", func(t *testing.T) {
		w := doJSON(t, r, http.MethodPost, "/games", gin.H{
			"userId": "u0", "name": "Alice", "maxPlayers": 12,
		})
		require.Equal(t, http.StatusBadRequest, w.Code)
		var resp errorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.Equal(t, string(game.ErrInvalidConfiguration), resp.Code)
	})
}

func TestJoinAndStart(t *testing.T) {
	r := newTestRouter(t)
	ref := createGame(t, r)
	joinGame(t, r, ref.code, "u1", "Bob")

	t.Run("unknown code is 404", func(t *testing.T) {
		w := doJSON(t, r, http.MethodPost, "/games/ZZZZZZ/join", gin.H{
			"userId": "u9", "name": "Nobody",
		})
		require.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("only the creator starts", func(t *testing.T) {
		w := doJSON(t, r, http.MethodPost, "/games/"+ref.code+"/start", gin.H{
			"playerId": "not-the-creator",
		})
		require.Equal(t, http.StatusUnprocessableEntity, w.Code)
		var resp errorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.Equal(t, string(game.ErrIllegalAction), resp.Code)
	})

	t.Run("start returns the opening events", func(t *testing.T) {
		w := doJSON(t, r, http.MethodPost, "/games/"+ref.code+"/start", gin.H{
			"playerId": ref.playerID,
		})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var resp actionResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.Equal(t, game.StatusInProgress, resp.Snapshot.Status)
		require.NotEmpty(t, resp.Events)
		types := map[game.EventType]bool{}
		for _, ev := range resp.Events {
			types[ev.Type] = true
		}
		require.True(t, types[game.EventGameStarted])
		require.True(t, types[game.EventTurnChanged])
	})
}

func TestSubmitAction(t *testing.T) {
	r := newTestRouter(t)
	ref := createGame(t, r)
	joinGame(t, r, ref.code, "u1", "Bob")
	w := doJSON(t, r, http.MethodPost, "/games/"+ref.code+"/start", gin.H{"playerId": ref.playerID})
	require.Equal(t, http.StatusOK, w.Code)
	var started actionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &started))

	actor := started.Snapshot.Turn.PlayerID
	var owned string
	for _, terr := range started.Snapshot.Territories {
		if terr.OwnerID == actor {
			owned = terr.ID
			break
		}
	}

	t.Run("applies a deploy", func(t *testing.T) {
		w := doJSON(t, r, http.MethodPost, "/games/"+ref.code+"/actions", gin.H{
			"type": "DEPLOY_TROOPS", "actingPlayerId": actor, "to": owned, "troops": 1,
		})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var resp actionResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.Len(t, resp.Events, 1)
		require.Equal(t, game.EventTroopsDeployed, resp.Events[0].Type)
	})

	t.Run("rejects schema violations before the engine", func(t *testing.T) {
		cases := []gin.H{
			{"actingPlayerId": actor},                                              // no type
			{"type": "TELEPORT", "actingPlayerId": actor},                          // unknown type
			{"type": "ATTACK", "actingPlayerId": actor, "attackerDice": 7},         // dice out of range
			{"type": "DEPLOY_TROOPS", "actingPlayerId": actor, "troops": -1},       // negative troops
		}
		for _, body := range cases {
			w := doJSON(t, r, http.MethodPost, "/games/"+ref.code+"/actions", body)
			require.Equal(t, http.StatusBadRequest, w.Code, "body: %v", body)
		}
	})

	t.Run("maps illegal actions to 422", func(t *testing.T) {
		w := doJSON(t, r, http.MethodPost, "/games/"+ref.code+"/actions", gin.H{
			"type": "ATTACK", "actingPlayerId": actor, "from": owned, "to": owned, "troops": 1,
		})
		require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("maps stale versions to 409", func(t *testing.T) {
		w := doJSON(t, r, http.MethodPost, "/games/"+ref.code+"/actions", gin.H{
			"type": "DEPLOY_TROOPS", "actingPlayerId": actor, "to": owned,
			"troops": 1, "version": 1,
		})
		require.Equal(t, http.StatusConflict, w.Code)
		var resp errorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.Equal(t, string(game.ErrConcurrencyViolation), resp.Code)
	})
}

func TestEventsEndpoint(t *testing.T) {
	r := newTestRouter(t)
	ref := createGame(t, r)
	joinGame(t, r, ref.code, "u1", "Bob")
	w := doJSON(t, r, http.MethodPost, "/games/"+ref.code+"/start", gin.H{"playerId": ref.playerID})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodGet, "/games/"+ref.code+"/events", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Events []game.Event `json:"events"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Events)
	total := len(resp.Events)

	from := resp.Events[1].Seq
	w = doJSON(t, r, http.MethodGet, fmt.Sprintf("/games/%s/events?from=%d", ref.code, from), nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Events, total-2, "the tail starts past the from sequence")
}

func TestLifecycleEndpoints(t *testing.T) {
	r := newTestRouter(t)
	ref := createGame(t, r)
	joinGame(t, r, ref.code, "u1", "Bob")
	w := doJSON(t, r, http.MethodPost, "/games/"+ref.code+"/start", gin.H{"playerId": ref.playerID})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodPost, "/games/"+ref.code+"/pause", gin.H{"playerId": ref.playerID})
	require.Equal(t, http.StatusNoContent, w.Code)
	w = doJSON(t, r, http.MethodPost, "/games/"+ref.code+"/resume", gin.H{"playerId": ref.playerID})
	require.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(t, r, http.MethodPost, "/games/"+ref.code+"/forfeit", gin.H{"playerId": ref.playerID})
	require.Equal(t, http.StatusNoContent, w.Code)
	w = doJSON(t, r, http.MethodGet, "/games/"+ref.code, nil)
	var snap game.Snapshot
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &snap))
	require.Equal(t, game.StatusFinished, snap.Status, "a two-player forfeit ends the game")
}

func TestJoinQR(t *testing.T) {
	r := newTestRouter(t)
	ref := createGame(t, r)
	w := doJSON(t, r, http.MethodGet, "/games/"+ref.code+"/qr", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "image/png", w.Header().Get("Content-Type"))
	require.NotEmpty(t, w.Body.Bytes())
}
