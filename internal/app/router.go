package app

import (
	"lms_backend/docs"
	"lms_backend/internal/config"
	"lms_backend/internal/middleware"
	"lms_backend/internal/model"
	"lms_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, repos *repositories, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 1. 公共路由(无需登录)
	a.registerPublicRoutes(router, c)

	// 2. 需要授权的路由
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg), middleware.ActivityMiddleware(repos.user))
	{
		a.registerLearnerRoutes(authGroup, c)
		a.registerInstructorRoutes(authGroup, c)
	}

	// 3. 管理员相关接口
	a.registerAdminRoutes(router, c, repos, cfg)
}

func (a *App) registerPublicRoutes(router *gin.Engine, c *controllers) {
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/register", c.auth.Register)
		public.POST("/login", c.auth.Login)

		// 课程目录：游客只看 everyone 可见的课程，登录用户多看 signed_in
		public.GET("/catalog", middleware.TryAuthMiddleware(a.Config), c.course.Catalog)
	}
}

func (a *App) registerLearnerRoutes(rg *gin.RouterGroup, c *controllers) {
	rg.GET("/profile", c.auth.GetProfile)
	rg.GET("/my-courses", c.enrollment.ListMyCourses)
	rg.POST("/courses/:id/enroll", c.enrollment.SelfEnroll)
	rg.POST("/quizzes/:id/attempts", c.quiz.SubmitAttempt)
}

func (a *App) registerInstructorRoutes(rg *gin.RouterGroup, c *controllers) {
	instructor := rg.Group("/instructor")
	instructor.Use(middleware.RoleMiddleware(model.Instructor, model.Admin))
	{
		// 课程管理
		instructor.POST("/courses", c.course.Create)
		instructor.GET("/courses", c.course.ListMine)
		instructor.GET("/courses/:id", c.course.Get)
		instructor.PUT("/courses/:id", c.course.Update)
		instructor.POST("/courses/:id/publish", c.course.TogglePublish)
		instructor.PUT("/courses/:id/tags", c.course.SetTags)

		// 课时管理
		instructor.GET("/courses/:id/lessons", c.lesson.List)
		instructor.POST("/courses/:id/lessons", c.lesson.Append)
		instructor.PUT("/courses/:id/lessons/reorder", c.lesson.Reorder)
		instructor.PUT("/lessons/:lessonId", c.lesson.Update)
		instructor.DELETE("/lessons/:lessonId", c.lesson.Delete)

		// 测验管理
		instructor.GET("/quizzes/:id", c.quiz.GetDetail)
		instructor.POST("/quizzes/:id/questions", c.quiz.AddQuestion)
		instructor.PUT("/quizzes/:id/reward-schedule", c.quiz.UpdateRewardSchedule)
		instructor.PUT("/questions/:qid", c.quiz.UpdateQuestion)
		instructor.DELETE("/questions/:qid", c.quiz.DeleteQuestion)

		// 学员管理
		instructor.GET("/courses/:id/attendees", c.enrollment.ListAttendees)
		instructor.POST("/courses/:id/attendees", c.enrollment.Invite)
		instructor.GET("/courses/:id/eligible-learners", c.enrollment.ListEligibleLearners)

		// 课时媒体上传
		instructor.POST("/media", c.media.Upload)
	}
}

func (a *App) registerAdminRoutes(router *gin.Engine, c *controllers, repos *repositories, cfg *config.Config) {
	admin := router.Group("/api/admin")
	admin.Use(middleware.AuthMiddleware(cfg), middleware.ActivityMiddleware(repos.user), middleware.RoleMiddleware(model.Admin))
	{
		admin.GET("/users", c.user.List)
		admin.GET("/users/:id", c.user.Get)
		admin.PATCH("/users/:id", c.user.Update)
		admin.PUT("/users/:id/password", c.user.ResetPassword)
		admin.DELETE("/users/:id", c.user.Delete)
	}
}
