package web

// Re-export types from subpackages
import (
	"log/slog"

	websocket "github.com/lcalzada-xor/biowatch/internal/adapters/web/websocket"
)

// WSManager is re-exported from the websocket subpackage
type WSManager = websocket.WSManager

// NewWSManager creates a new WSManager
func NewWSManager(allowedOrigins []string, logger *slog.Logger) *WSManager {
	return websocket.NewWSManager(allowedOrigins, logger)
}
