package inbound

import (
	"github.com/tradekart/notifier/internal/pkg/router"
)

func RegisterHTTPEndpoint(r *router.Router, uc uc) {
	end := &HTTPEndpoint{uc: uc}

	r.POST("/api/v1/notifications", end.CreateNotification)
	r.GET("/api/v1/notifications", end.ListNotifications)
	r.GET("/api/v1/notifications/:id", end.GetNotification)
	r.POST("/api/v1/notifications/:id/send", end.SendNotification)
	r.DELETE("/api/v1/notifications/:id", end.CancelNotification)
	r.PATCH("/api/v1/notifications/:id/archive", end.ArchiveNotification)
	r.POST("/api/v1/notifications/:id/engagement", end.RecordEngagement)

	// Static segments cannot share a level with :id wildcards, so the
	// per-user surfaces live under the singular prefix.
	r.POST("/api/v1/notification/device", end.DeviceRegister)
	r.DELETE("/api/v1/notification/device", end.DeviceUnregister)

	r.GET("/api/v1/notification/inbox", end.ListInbox)
	r.PATCH("/api/v1/notification/inbox/:id/read", end.MarkInboxRead)

	r.GET("/api/v1/admin/notifications/stats", end.AdminStats, router.RequireRole("admin"))
	r.POST("/api/v1/admin/notifications/sweep", end.AdminSweep, router.RequireRole("admin"))
	r.POST("/api/v1/admin/notifications/cleanup-endpoints", end.AdminCleanupEndpoints, router.RequireRole("admin"))
}
