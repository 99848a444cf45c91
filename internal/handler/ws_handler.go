package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stemsi/exscan-backend/internal/config"
	"github.com/stemsi/exscan-backend/internal/middleware"
	"github.com/stemsi/exscan-backend/internal/model"
	"github.com/stemsi/exscan-backend/internal/service"
	ws "github.com/stemsi/exscan-backend/internal/websocket"
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// allowedOrigins comes from config.Config.AllowedOrigins.
// An empty slice permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// WSHandler streams grading results to teachers watching a test.
type WSHandler struct {
	rdb         *redis.Client
	testService *service.TestService
	log         zerolog.Logger
	upgrader    websocket.Upgrader
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(rdb *redis.Client, testService *service.TestService, log zerolog.Logger, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		rdb:         rdb,
		testService: testService,
		log:         log.With().Str("component", "ws_handler").Logger(),
		upgrader:    buildUpgrader(allowedOrigins),
	}
}

// ResultsStream godoc
// WS /ws/v1/tests/:test_id/results
// Upgrades to WebSocket and pushes a graded event whenever a submission on
// the test finishes grading.
func (h *WSHandler) ResultsStream(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	testID, ok := parseUUIDParam(c, "test_id")
	if !ok {
		return
	}

	if err := h.testService.CheckOwner(c.Request.Context(), claims.TeacherID, testID); err != nil {
		status := http.StatusForbidden
		if errors.Is(err, service.ErrNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": "test not accessible"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	sock := ws.NewConn(conn)
	defer sock.Close()

	wsLog := h.log.With().
		Int("teacher_id", claims.TeacherID).
		Str("test_id", testID.String()).
		Logger()

	wsLog.Info().Msg("Teacher connected to results stream")

	pubsub := h.rdb.Subscribe(c.Request.Context(), config.CacheKey.TestResultsChannel(testID.String()))
	defer pubsub.Close()

	// Reader goroutine: detects client close and answers pings. Closing the
	// pubsub from here unblocks the forwarding loop below.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			var msg ws.RequestEnvelope
			if err := sock.ReadJSON(&msg); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					wsLog.Warn().Err(err).Msg("Unexpected close")
				} else {
					wsLog.Debug().Msg("Connection closed")
				}
				pubsub.Close()
				return
			}
			var writeErr error
			switch msg.Action {
			case ws.ActionPing:
				writeErr = sock.WriteTyped(ws.PongResponse{Event: ws.EventPong})
			default:
				writeErr = sock.WriteError("unknown action")
			}
			if writeErr != nil {
				wsLog.Debug().Err(writeErr).Msg("Reply write failed")
				pubsub.Close()
				return
			}
		}
	}()

	for redisMsg := range pubsub.Channel() {
		var event model.GradingEvent
		if err := json.Unmarshal([]byte(redisMsg.Payload), &event); err != nil {
			wsLog.Error().Err(err).Msg("Invalid grading event payload")
			continue
		}

		err := sock.WriteTyped(ws.GradedResponse{
			Event:        ws.EventGraded,
			SubmissionID: event.SubmissionID,
			TestID:       event.TestID,
			Score:        event.Score,
			GradedAt:     event.GradedAt.Format("2006-01-02T15:04:05Z07:00"),
		})
		if err != nil {
			wsLog.Debug().Err(err).Msg("Write failed, dropping stream")
			break
		}
	}

	// Close the socket before waiting so the reader goroutine does not sit
	// on its read deadline after a failed event write.
	sock.Close()
	<-done
	wsLog.Info().Msg("Results stream closed")
}
