package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/yigit/alumnihub/internal/app/controllers"
	"github.com/yigit/alumnihub/internal/middleware"
	"github.com/yigit/alumnihub/internal/pkg/websocket"
)

// Controllers groups every HTTP controller mounted by SetupRouter
type Controllers struct {
	Auth         *controllers.AuthController
	User         *controllers.UserController
	Gamification *controllers.GamificationController
	Verification *controllers.VerificationController
	Notification *controllers.NotificationController
	Community    *controllers.CommunityController
	Session      *controllers.SessionController
	Mentorship   *controllers.MentorshipController
	Career       *controllers.CareerController
	WebSocket    *websocket.Handler
}

// Limiters are optional; nil disables rate limiting for that tier
type Limiters struct {
	General *middleware.RateLimiter
	Auth    *middleware.RateLimiter
}

func use(group *gin.RouterGroup, rl *middleware.RateLimiter) {
	if rl != nil {
		group.Use(rl.Middleware())
	}
}

// SetupRouter configures all application routes.
// Reads are public, writes need a token, and /admin needs the admin role.
func SetupRouter(router *gin.Engine, c Controllers, authMiddleware *middleware.AuthMiddleware, limiters Limiters) {
	// API version group
	v1 := router.Group("/api/v1")

	// --- Public Auth routes ---
	auth := v1.Group("/auth")
	use(auth, limiters.Auth)
	{
		auth.POST("/register", c.Auth.Register)
		auth.POST("/login", c.Auth.Login)
		auth.POST("/refresh", c.Auth.RefreshToken)
		auth.POST("/logout", c.Auth.Logout)
		auth.POST("/forgot-password", c.Auth.ForgotPassword)
		auth.POST("/reset-password", c.Auth.ResetPassword)
	}

	// --- Public routes; a token, when present, identifies the caller ---
	public := v1.Group("")
	public.Use(authMiddleware.OptionalAuth())
	use(public, limiters.General)
	{
		public.GET("/communities", c.Community.GetAllCommunities)
		public.GET("/communities/:id", c.Community.GetCommunityByID)
		public.GET("/communities/:id/members", c.Community.GetMembers)
		public.GET("/communities/:id/articles", c.Community.ListArticles)
		public.GET("/articles/:articleId", c.Community.GetArticle)

		public.GET("/sessions", c.Session.ListSessions)
		public.GET("/sessions/:id", c.Session.GetSession)
		public.GET("/sessions/:id/recording", c.Session.GetRecording)
		public.GET("/sessions/:id/feedback", c.Session.ListFeedback)

		public.GET("/badges", c.Gamification.ListBadges)
		public.GET("/users/:id/badges", c.Gamification.ListUserBadges)
		public.GET("/users/:id/skills", c.Career.ListUserSkills)

		public.GET("/mentorship/programs", c.Mentorship.ListPrograms)
		public.GET("/mentorship/mentors", c.Mentorship.ListMentors)
		public.GET("/mentorship/mentors/:userId", c.Mentorship.GetMentorProfile)

		public.GET("/jobs", c.Career.ListJobs)
		public.GET("/jobs/:id", c.Career.GetJob)
		public.GET("/skills", c.Career.ListSkills)
		public.GET("/career-paths", c.Career.ListCareerPaths)
	}

	// --- Authenticated Routes Group ---
	authenticated := v1.Group("")
	authenticated.Use(authMiddleware.JWTAuth())
	use(authenticated, limiters.General)
	{
		authenticated.POST("/auth/change-password", c.Auth.ChangePassword)

		users := authenticated.Group("/users")
		{
			users.GET("/me", c.User.GetMe)
			users.PATCH("/me", c.User.UpdateMe)
			users.GET("/me/stats", c.User.GetStats)
			users.GET("/:id", c.User.GetUser)
		}

		authenticated.POST("/points", c.Gamification.AddPoints)
		authenticated.GET("/points/transactions", c.Gamification.ListTransactions)
		authenticated.GET("/badges/me", c.Gamification.ListMyBadges)

		verifications := authenticated.Group("/verifications")
		{
			verifications.POST("", c.Verification.Submit)
			verifications.GET("/me", c.Verification.ListMine)
			verifications.GET("/:id", c.Verification.Get)
		}

		notifications := authenticated.Group("/notifications")
		{
			notifications.GET("", c.Notification.List)
			notifications.GET("/unread-count", c.Notification.UnreadCount)
			notifications.POST("/read-all", c.Notification.MarkAllRead)
			notifications.POST("/:id/read", c.Notification.MarkRead)
			notifications.GET("/preferences", c.Notification.GetPreferences)
			notifications.PATCH("/preferences", c.Notification.UpdatePreferences)
			notifications.GET("/ws", c.WebSocket.HandleConnection)
		}

		communities := authenticated.Group("/communities")
		{
			communities.POST("", c.Community.CreateCommunity)
			communities.POST("/:id/members", c.Community.JoinCommunity)
			communities.DELETE("/:id/members", c.Community.LeaveCommunity)
			communities.POST("/:id/members/:userId/approve", c.Community.ApproveMember)
			communities.POST("/:id/topics", c.Community.CreateTopic)
			communities.GET("/:id/topics", c.Community.ListTopics)
			communities.POST("/:id/articles", c.Community.CreateArticle)
		}
		authenticated.POST("/topics/:topicId/posts", c.Community.CreatePost)
		authenticated.GET("/topics/:topicId/posts", c.Community.ListPosts)
		authenticated.POST("/articles/:articleId/publish", c.Community.PublishArticle)

		sessions := authenticated.Group("/sessions")
		{
			sessions.POST("", c.Session.CreateSession)
			sessions.POST("/:id/join", c.Session.JoinSession)
			sessions.DELETE("/:id/join", c.Session.LeaveSession)
			sessions.PUT("/:id/status", c.Session.UpdateStatus)
			sessions.GET("/:id/participants", c.Session.ListParticipants)
			sessions.PUT("/:id/recording", c.Session.UpsertRecording)
			sessions.POST("/:id/feedback", c.Session.SubmitFeedback)
		}

		mentorship := authenticated.Group("/mentorship")
		{
			mentorship.PUT("/mentor-profile", c.Mentorship.UpsertMentorProfile)
			mentorship.PUT("/mentee-profile", c.Mentorship.UpsertMenteeProfile)
			mentorship.GET("/mentee-profile", c.Mentorship.GetMyMenteeProfile)
			mentorship.POST("/relationships", c.Mentorship.RequestMentorship)
			mentorship.GET("/relationships", c.Mentorship.ListRelationships)
			mentorship.GET("/relationships/:id", c.Mentorship.GetRelationship)
			mentorship.PUT("/relationships/:id/status", c.Mentorship.UpdateRelationshipStatus)
			mentorship.POST("/relationships/:id/sessions", c.Mentorship.ScheduleSession)
			mentorship.GET("/relationships/:id/sessions", c.Mentorship.ListSessions)
			mentorship.PUT("/sessions/:sessionId/status", c.Mentorship.UpdateSessionStatus)
			mentorship.POST("/sessions/:sessionId/feedback", c.Mentorship.SubmitSessionFeedback)
		}

		authenticated.POST("/jobs", c.Career.CreateJob)
		authenticated.POST("/jobs/:id/applications", c.Career.Apply)
		authenticated.GET("/jobs/:id/applications", c.Career.ListApplicationsForJob)
		authenticated.GET("/applications/me", c.Career.ListMyApplications)
		authenticated.PUT("/applications/:applicationId/status", c.Career.UpdateApplicationStatus)
		authenticated.PUT("/skills/me", c.Career.UpsertMySkill)
	}

	// --- Admin routes ---
	admin := v1.Group("/admin")
	admin.Use(authMiddleware.JWTAuth(), authMiddleware.AdminRequired())
	{
		admin.GET("/users", c.User.ListUsers)
		admin.POST("/users/:id/deactivate", c.User.DeactivateUser)

		admin.GET("/verifications", c.Verification.ListAll)
		admin.POST("/verifications/:id/decision", c.Verification.Decide)

		admin.POST("/points/adjust", c.Gamification.AdjustPoints)
		admin.POST("/badges", c.Gamification.CreateBadge)

		admin.POST("/mentorship/programs", c.Mentorship.CreateProgram)
		admin.POST("/skills", c.Career.CreateSkill)
		admin.POST("/career-paths", c.Career.CreateCareerPath)
	}
}
