package router

import (
	"github.com/erp/procurement/internal/domain/identity"
	"github.com/erp/procurement/internal/interfaces/http/handler"
	"github.com/erp/procurement/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Handlers groups the handlers served under /api/v1
type Handlers struct {
	Auth           *handler.AuthHandler
	Users          *handler.UserHandler
	Departments    *handler.DepartmentHandler
	Employees      *handler.EmployeeHandler
	Projects       *handler.ProjectHandler
	PurchaseOrders *handler.PurchaseOrderHandler
	Chatter        *handler.ChatterHandler
	System         *handler.SystemHandler
}

// Group guards. Admin is listed everywhere so an administrator never
// depends on holding the functional groups too.
var (
	purchaseGroups = []identity.Group{
		identity.GroupPurchaseUser,
		identity.GroupPurchaseManager,
		identity.GroupPurchaseCP,
		identity.GroupPurchaseHOD,
		identity.GroupAdmin,
	}
	approverGroups = []identity.Group{
		identity.GroupPurchaseHOD,
		identity.GroupPurchaseManager,
		identity.GroupAdmin,
	}
	purchaseManagerGroups = []identity.Group{
		identity.GroupPurchaseManager,
		identity.GroupAdmin,
	}
	projectGroups = []identity.Group{
		identity.GroupProjectManager,
		identity.GroupAdmin,
	}
)

// RegisterAPI registers every API route on r. The login rate limiter may
// be nil.
func RegisterAPI(r *Router, h Handlers, loginLimiter gin.HandlerFunc) {
	auth := NewDomainGroup("auth", "/auth")
	if loginLimiter != nil {
		auth.POST("/login", loginLimiter, h.Auth.Login)
	} else {
		auth.POST("/login", h.Auth.Login)
	}
	auth.POST("/logout", h.Auth.Logout)
	auth.GET("/me", h.Auth.Me)
	r.Register(auth)

	health := NewDomainGroup("system", "")
	health.GET("/health", h.System.Health)
	r.Register(health)

	adminOnly := middleware.RequireGroup(identity.GroupAdmin)

	users := NewDomainGroup("users", "/users").Use(adminOnly)
	users.POST("", h.Users.Create)
	users.GET("", h.Users.List)
	users.GET("/:id", h.Users.Get)
	users.PUT("/:id/groups", h.Users.SetGroups)
	users.POST("/:id/deactivate", h.Users.Deactivate)
	r.Register(users)

	departments := NewDomainGroup("departments", "/departments")
	departments.GET("", h.Departments.List)
	departments.GET("/:id", h.Departments.Get)
	departments.POST("", adminOnly, h.Departments.Create)
	departments.PUT("/:id", adminOnly, h.Departments.Update)
	departments.PUT("/:id/manager", adminOnly, h.Departments.SetManager)
	departments.DELETE("/:id", adminOnly, h.Departments.Delete)
	r.Register(departments)

	employees := NewDomainGroup("employees", "/employees")
	employees.GET("", h.Employees.List)
	employees.GET("/me", h.Employees.Me)
	employees.GET("/:id", h.Employees.Get)
	employees.POST("", adminOnly, h.Employees.Create)
	employees.PUT("/:id", adminOnly, h.Employees.Update)
	employees.PUT("/:id/user", adminOnly, h.Employees.LinkUser)
	employees.DELETE("/:id", adminOnly, h.Employees.Delete)
	r.Register(employees)

	projectWrite := middleware.RequireAnyGroup(projectGroups...)
	projects := NewDomainGroup("projects", "/projects")
	projects.GET("", h.Projects.List)
	projects.GET("/:id", h.Projects.Get)
	projects.POST("", projectWrite, h.Projects.Create)
	projects.PUT("/:id", projectWrite, h.Projects.Update)
	projects.PUT("/:id/stage", projectWrite, h.Projects.ChangeStage)
	projects.DELETE("/:id", projectWrite, h.Projects.Delete)
	r.Register(projects)

	orders := NewDomainGroup("purchase-orders", "/purchase-orders").
		Use(middleware.RequireAnyGroup(purchaseGroups...))
	orders.POST("", h.PurchaseOrders.Create)
	orders.GET("", h.PurchaseOrders.List)
	orders.GET("/:id", h.PurchaseOrders.Get)
	orders.PUT("/:id", h.PurchaseOrders.Update)
	orders.GET("/:id/editable-fields", h.PurchaseOrders.EditableFields)
	orders.POST("/:id/submit-rfq", h.PurchaseOrders.SubmitRFQ)
	orders.GET("/:id/confirm-wizard", h.PurchaseOrders.ConfirmWizard)
	orders.POST("/:id/confirm", h.PurchaseOrders.Confirm)
	orders.POST("/:id/approve", middleware.RequireAnyGroup(approverGroups...), h.PurchaseOrders.Approve)
	orders.POST("/:id/cancel", h.PurchaseOrders.Cancel)
	orders.POST("/:id/lock", h.PurchaseOrders.Lock)
	orders.POST("/:id/unlock", middleware.RequireAnyGroup(purchaseManagerGroups...), h.PurchaseOrders.Unlock)
	orders.POST("/:id/draft", h.PurchaseOrders.ResetToDraft)
	r.Register(orders)

	chatter := NewDomainGroup("chatter", "/chatter")
	chatter.GET("/:model/:id/messages", h.Chatter.ListMessages)
	chatter.POST("/:model/:id/messages", h.Chatter.PostMessage)
	chatter.POST("/:model/:id/activities", h.Chatter.ScheduleActivity)
	chatter.POST("/messages/:id/attachments", h.Chatter.RequestAttachmentUpload)
	chatter.GET("/attachments/:id/download", h.Chatter.DownloadAttachment)
	r.Register(chatter)

	activities := NewDomainGroup("activities", "/activities")
	activities.GET("/mine", h.Chatter.MyActivities)
	activities.POST("/:id/done", h.Chatter.MarkActivityDone)
	r.Register(activities)
}

// RegisterHealthChecks registers the unauthenticated health checks outside the API
// prefix.
func RegisterHealthChecks(engine *gin.Engine, system *handler.SystemHandler) {
	engine.GET("/health", system.Health)
	engine.GET("/ready", system.Ready)
}

// RegisterDocs serves the Swagger UI and the generated OpenAPI document
// under /swagger behind protection.
func RegisterDocs(engine *gin.Engine, protection gin.HandlerFunc) {
	engine.GET("/swagger/*any", protection, ginSwagger.WrapHandler(swaggerFiles.Handler))
}
