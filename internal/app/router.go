package app

import (
	"cryptoseven_backend/docs"
	"cryptoseven_backend/internal/config"
	"cryptoseven_backend/internal/middleware"
	"cryptoseven_backend/internal/model"

	"cryptoseven_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, repos *repositories, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 1. 公共路由（无需登录，部分支持可选认证）
	a.registerPublicRoutes(router, c, repos)

	// 2. 需要授权的路由
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg), middleware.ActivityMiddleware(repos.user))
	{
		a.registerUserRoutes(authGroup, c)
	}

	// 3. 管理员路由
	a.registerAdminRoutes(router, c, repos, cfg)
}

func (a *App) registerPublicRoutes(router *gin.Engine, c *controllers, repos *repositories) {
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)

		auth := public.Group("/auth")
		{
			auth.POST("/register", c.auth.Register)
			auth.POST("/login", c.auth.Login)
			auth.POST("/oauth", c.auth.OAuthLogin)
		}

		// 列表/详情类：游客可看，登录用户附带个人态
		optional := public.Group("/")
		optional.Use(middleware.TryAuthMiddleware(a.Config), middleware.ActivityMiddleware(repos.user))
		{
			optional.GET("/courses", c.course.ListCourses)
			optional.GET("/courses/:id", c.course.GetCourse)
			optional.GET("/quizzes", c.quiz.ListQuizzes)
			optional.GET("/quizzes/:id", c.quiz.GetQuiz)
			optional.GET("/ctf", c.ctf.ListEvents)
			optional.GET("/ctf/:id", c.ctf.GetEvent)
			optional.GET("/ctf/:id/scoreboard", c.ctf.Scoreboard)
			optional.GET("/leaderboard", c.leaderboard.GetGlobal)
			optional.GET("/forum/posts", c.forum.ListPosts)
			optional.GET("/forum/posts/:id", c.forum.GetPost)
		}

		// 邀请链接点击归因，匿名可调
		public.POST("/referral/:code/click", c.referral.RecordClick)
	}
}

func (a *App) registerUserRoutes(rg *gin.RouterGroup, c *controllers) {
	rg.GET("/user/profile", c.user.GetProfile)
	rg.PUT("/user/profile", c.user.UpdateProfile)
	rg.GET("/user/checkins", c.user.GetCheckinCalendar)

	rg.POST("/upload/image", c.upload.UploadImage)

	rg.POST("/courses/:id/enroll", c.course.Enroll)
	rg.POST("/courses/:id/watch", c.course.ReportWatchTime)
	rg.GET("/courses/progress", c.course.GetProgress)

	rg.POST("/quizzes/:id/submit", c.quiz.Submit)
	rg.GET("/quizzes/progress", c.quiz.GetProgress)

	rg.POST("/ctf/:id/register", c.ctf.Register)
	rg.POST("/ctf/:id/submit", c.ctf.SubmitFlag)
	rg.POST("/ctf/:id/finish", c.ctf.Finish)

	rg.POST("/forum/posts", c.forum.CreatePost)
	rg.DELETE("/forum/posts/:id", c.forum.DeletePost)
	rg.POST("/forum/posts/:id/comments", c.forum.CreateComment)
	rg.DELETE("/forum/comments/:commentId", c.forum.DeleteComment)
	rg.POST("/forum/posts/:id/like", c.forum.ToggleLike)

	rg.GET("/referral", c.referral.GetInfo)
	rg.POST("/referral/claim", c.referral.ClaimTier)
}

func (a *App) registerAdminRoutes(router *gin.Engine, c *controllers, repos *repositories, cfg *config.Config) {
	admin := router.Group("/api/admin")
	admin.Use(
		middleware.AuthMiddleware(cfg),
		middleware.RoleMiddleware(model.Admin),
		middleware.ActivityMiddleware(repos.user),
	)
	{
		admin.GET("/users", c.user.ListUsers)
		admin.PUT("/users/:id/disabled", c.user.SetUserDisabled)
		admin.DELETE("/users/:id", c.user.DeleteUser)

		admin.POST("/courses", c.course.CreateCourse)
		admin.PUT("/courses/:id", c.course.UpdateCourse)
		admin.DELETE("/courses/:id", c.course.DeleteCourse)
		admin.POST("/courses/:id/modules", c.course.CreateModule)
		admin.PUT("/modules/:moduleId", c.course.UpdateModule)
		admin.DELETE("/modules/:moduleId", c.course.DeleteModule)
		admin.POST("/upload/video", c.upload.UploadVideo)

		admin.POST("/quizzes", c.quiz.CreateQuiz)
		admin.GET("/quizzes/:id", c.quiz.AdminGetQuiz)
		admin.PUT("/quizzes/:id", c.quiz.UpdateQuiz)
		admin.DELETE("/quizzes/:id", c.quiz.DeleteQuiz)
		admin.POST("/quizzes/:id/questions", c.quiz.CreateQuestion)
		admin.PUT("/quiz-questions/:questionId", c.quiz.UpdateQuestion)
		admin.DELETE("/quiz-questions/:questionId", c.quiz.DeleteQuestion)

		admin.POST("/ctf", c.ctf.CreateEvent)
		admin.PUT("/ctf/:id", c.ctf.UpdateEvent)
		admin.DELETE("/ctf/:id", c.ctf.DeleteEvent)
		admin.POST("/ctf/:id/questions", c.ctf.CreateQuestion)
		admin.PUT("/ctf-questions/:questionId", c.ctf.UpdateQuestion)
		admin.DELETE("/ctf-questions/:questionId", c.ctf.DeleteQuestion)

		admin.POST("/leaderboard/rebuild", c.leaderboard.Rebuild)
	}
}
