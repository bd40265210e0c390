package middleware

import (
	"context"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/live627/elkarte.net/internal/app/errorlog"
	"github.com/live627/elkarte.net/internal/config"
	"github.com/live627/elkarte.net/internal/request"
	"github.com/shirou/gopsutil/v4/load"
)

const (
	MaintenanceClosed = 2
	dbCheckInterval   = 5 * time.Second
)

// MaintenanceGate shows the maintenance page to everyone but administrators
// while the forum is closed.
func MaintenanceGate(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		if cfg.Maintenance != MaintenanceClosed || request.FromGin(c).Member.IsAdmin {
			c.Next()
			return
		}
		errorlog.DisplayMaintenanceMessage(c.Writer, cfg)
		c.Abort()
	}
}

// LoadAvgFunc returns the one minute load average.
type LoadAvgFunc func() (float64, error)

// ReadLoadAvg returns the host's one minute load average.
func ReadLoadAvg() (float64, error) {
	avg, err := load.Avg()
	if err != nil {
		return 0, err
	}
	return avg.Load1, nil
}

// LoadAvgGate refuses requests while the system load is above
// LOADAVG_FORUM. A zero limit disables the check.
func LoadAvgGate(cfg *config.Config, loadAvg LoadAvgFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		if cfg.LoadAvgForum <= 0 {
			c.Next()
			return
		}
		load, err := loadAvg()
		if err != nil || load < cfg.LoadAvgForum {
			c.Next()
			return
		}
		errorlog.DisplayLoadAvgError(c.Writer)
		c.Abort()
	}
}

// DBPinger checks the database connection.
type DBPinger interface {
	PingDB(ctx context.Context) error
}

// DatabaseGate shows the database error page when the database is
// unreachable. Successful pings are trusted for a few seconds.
func DatabaseGate(pinger DBPinger, page *errorlog.DBErrorPage) gin.HandlerFunc {
	var (
		mu     sync.Mutex
		okTill time.Time
	)
	return func(c *gin.Context) {
		mu.Lock()
		fresh := time.Now().Before(okTill)
		mu.Unlock()
		if fresh {
			c.Next()
			return
		}

		if err := pinger.PingDB(c.Request.Context()); err != nil {
			page.Display(c.Request.Context(), c.Writer, err)
			c.Abort()
			return
		}

		mu.Lock()
		okTill = time.Now().Add(dbCheckInterval)
		mu.Unlock()
		c.Next()
	}
}
