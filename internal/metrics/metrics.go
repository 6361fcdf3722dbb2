// internal/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gin-gonic/gin"
)

var (
	OrdersCreated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "fram3",
		Subsystem: "payments",
		Name:      "orders_created_total",
		Help:      "Credit purchase orders created.",
	})

	OrdersVerified = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "fram3",
		Subsystem: "payments",
		Name:      "orders_verified_total",
		Help:      "Payment verification outcomes.",
	}, []string{"result"})

	AssetRestores = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "fram3",
		Subsystem: "assets",
		Name:      "version_restores_total",
		Help:      "Asset version restore operations.",
	})

	CreditsConsumed = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "fram3",
		Subsystem: "credits",
		Name:      "consumed_total",
		Help:      "Credits consumed by generation and edit operations.",
	})
)

// Handler exposes the default registry for the /metrics route.
func Handler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
