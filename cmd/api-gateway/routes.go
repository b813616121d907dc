package main

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/piano-academy-api/api/swagger"
	"github.com/noah-isme/piano-academy-api/internal/handler"
	"github.com/noah-isme/piano-academy-api/internal/middleware"
	"github.com/noah-isme/piano-academy-api/internal/models"
	"github.com/noah-isme/piano-academy-api/internal/service"
	"github.com/noah-isme/piano-academy-api/pkg/config"
	"github.com/noah-isme/piano-academy-api/pkg/logger"
	"github.com/noah-isme/piano-academy-api/pkg/middleware/cors"
	"github.com/noah-isme/piano-academy-api/pkg/middleware/requestid"
	"github.com/noah-isme/piano-academy-api/pkg/ratelimit"
)

type services struct {
	auth       *service.AuthService
	family     *service.FamilyService
	student    *service.StudentService
	teacher    *service.TeacherService
	schedule   *service.ScheduleService
	weekly     *service.WeeklyScheduleService
	payment    *service.PaymentService
	finance    *service.FinanceService
	payhere    *service.PayhereService
	portal     *service.PortalService
	attendance *service.AttendanceService
	metrics    *service.MetricsService
}

type routerDeps struct {
	services     services
	audit        middleware.AuditRecorder
	db           handler.Pinger
	loginLimiter ratelimit.Limiter
	kioskLimiter ratelimit.Limiter
}

func newRouter(cfg *config.Config, logr *zap.Logger, deps routerDeps) *gin.Engine {
	svc := deps.services

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestid.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(cors.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(svc.metrics))
	r.Use(middleware.WithResponseMeta())

	metricsHandler := handler.NewMetricsHandler(svc.metrics, deps.db)
	r.GET("/health", metricsHandler.Health)
	r.GET("/metrics", metricsHandler.Prometheus)
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	authHandler := handler.NewAuthHandler(svc.auth)
	portalHandler := handler.NewPortalHandler(svc.portal, handler.PortalCookie{
		Name:   cfg.Portal.CookieName,
		Secure: cfg.Portal.CookieSecure,
	})
	kioskHandler := handler.NewKioskHandler(svc.student, svc.attendance)
	familyHandler := handler.NewFamilyHandler(svc.family)
	studentHandler := handler.NewStudentHandler(svc.student)
	teacherHandler := handler.NewTeacherHandler(svc.teacher)
	scheduleHandler := handler.NewScheduleHandler(svc.schedule)
	weeklyHandler := handler.NewWeeklyScheduleHandler(svc.weekly)
	paymentHandler := handler.NewPaymentHandler(svc.payment)
	financeHandler := handler.NewFinanceHandler(svc.finance)
	payhereHandler := handler.NewPayhereHandler(svc.payhere, cfg.Upload.MaxBytes)

	api := r.Group(cfg.APIPrefix)

	loginLimit := middleware.RateLimit(deps.loginLimiter, "login", logr)
	api.POST("/auth/login", loginLimit, authHandler.Login)

	portal := api.Group("/portal")
	portal.POST("/login", middleware.RateLimit(deps.loginLimiter, "portal-login", logr), portalHandler.Login)
	portal.POST("/logout", portalHandler.Logout)
	parent := portal.Group("", middleware.PortalSession(svc.auth, cfg.Portal.CookieName))
	parent.GET("/me", portalHandler.Me)
	parent.GET("/children", portalHandler.Children)
	parent.GET("/children/:id/attendance", portalHandler.ChildAttendance)
	parent.GET("/children/:id/payments", portalHandler.ChildPayments)

	kiosk := api.Group("/kiosk", middleware.RateLimit(deps.kioskLimiter, "kiosk", logr))
	kiosk.GET("/students", kioskHandler.SearchStudents)
	kiosk.POST("/check-in", kioskHandler.CheckIn)

	admin := api.Group("", middleware.JWT(svc.auth), middleware.RequireRoles(models.RoleAdmin))
	audit := func(action, resource string) gin.HandlerFunc {
		return middleware.Audit(deps.audit, action, resource, logr)
	}

	admin.GET("/auth/me", authHandler.Me)
	admin.POST("/auth/change-password", audit("CHANGE_PASSWORD", "user"), authHandler.ChangePassword)
	admin.GET("/system/metrics", metricsHandler.System)

	admin.POST("/families", audit("CREATE", "family"), familyHandler.Create)
	admin.GET("/families/:id", familyHandler.Get)
	admin.PATCH("/families/:id/discount-tier", audit("UPDATE", "family"), familyHandler.UpdateDiscountTier)

	admin.GET("/students", studentHandler.List)
	admin.GET("/students/:id", studentHandler.Get)
	admin.POST("/students", audit("CREATE", "student"), studentHandler.Create)
	admin.PUT("/students/:id", audit("UPDATE", "student"), studentHandler.Update)

	admin.GET("/teachers", teacherHandler.List)
	admin.POST("/teachers", audit("CREATE", "teacher"), teacherHandler.Create)
	admin.PUT("/teachers/:id", audit("UPDATE", "teacher"), teacherHandler.Update)

	registerScheduleRoutes(admin, scheduleHandler, weeklyHandler, audit)

	admin.GET("/payments", paymentHandler.List)
	admin.POST("/payments", audit("CREATE", "payment"), paymentHandler.Create)

	admin.GET("/attendance", kioskHandler.Attendance)

	finance := admin.Group("/finance")
	finance.GET("/summary", financeHandler.Summary)
	finance.GET("/summary/export", financeHandler.ExportSummary)
	finance.GET("/revenues", financeHandler.ListRevenues)
	finance.POST("/revenues", audit("CREATE", "revenue"), financeHandler.CreateRevenue)
	finance.PUT("/revenues/:id", audit("UPDATE", "revenue"), financeHandler.UpdateRevenue)
	finance.DELETE("/revenues/:id", audit("DELETE", "revenue"), financeHandler.DeleteRevenue)
	finance.GET("/expenses", financeHandler.ListExpenses)
	finance.POST("/expenses", audit("CREATE", "expense"), financeHandler.CreateExpense)
	finance.PUT("/expenses/:id", audit("UPDATE", "expense"), financeHandler.UpdateExpense)
	finance.DELETE("/expenses/:id", audit("DELETE", "expense"), financeHandler.DeleteExpense)

	payhere := admin.Group("/payhere")
	payhere.POST("/upload", audit("UPLOAD", "payhere_batch"), payhereHandler.Upload)
	payhere.GET("/summary", payhereHandler.Summary)
	payhere.GET("/sales", payhereHandler.Sales)
	payhere.GET("/sales/export", payhereHandler.ExportSales)
	payhere.GET("/daily", payhereHandler.Daily)
	payhere.GET("/settlements", payhereHandler.Settlements)
	payhere.GET("/batches", payhereHandler.Batches)
	payhere.DELETE("/batches/:id", audit("DELETE", "payhere_batch"), payhereHandler.DeleteBatch)

	return r
}

// registerScheduleRoutes mounts recurring schedules and weekly snapshots.
// The static /schedules/weekly paths go in before /schedules/:id.
func registerScheduleRoutes(g gin.IRoutes, schedules *handler.ScheduleHandler, weekly *handler.WeeklyScheduleHandler, audit func(action, resource string) gin.HandlerFunc) {
	g.GET("/schedules/weekly", weekly.Get)
	g.POST("/schedules/weekly", audit("CREATE", "weekly_schedule"), weekly.GetOrCreate)
	g.PUT("/schedules/weekly", audit("UPDATE", "weekly_schedule"), weekly.UpdateAttendance)
	g.POST("/schedules/weekly/:id/confirm", audit("CONFIRM", "weekly_schedule"), weekly.Confirm)

	g.GET("/schedules", schedules.List)
	g.GET("/schedules/board", schedules.Board)
	g.POST("/schedules", audit("CREATE", "schedule"), schedules.Create)
	g.PUT("/schedules/:id", audit("UPDATE", "schedule"), schedules.Update)
	g.DELETE("/schedules/:id", audit("DELETE", "schedule"), schedules.Delete)
}
