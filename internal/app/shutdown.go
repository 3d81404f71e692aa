package app

import (
	"context"
	"time"
)

// Shutdown performs graceful shutdown of all components: the Telegram
// connector, the schedule runner, the message bus and the metrics listener.
// It is safe to call more than once.
func (a *App) Shutdown() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.started {
		return nil
	}

	a.cancel()

	if a.telegram != nil {
		if err := a.telegram.Stop(); err != nil {
			a.logger.Error("Failed to stop telegram connector", err)
		}
	}

	if a.runner != nil {
		a.runner.Stop()
	}

	var busErr error
	if a.messageBus != nil {
		busErr = a.messageBus.Stop()
		if busErr != nil {
			a.logger.Error("Failed to stop message bus", busErr)
		}
	}

	if a.metricsServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		a.metricsServer.Stop(shutdownCtx)
		cancel()
	}

	a.started = false
	a.logger.Info("Application shutdown complete")

	return busErr
}
