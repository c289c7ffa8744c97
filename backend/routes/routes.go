package routes

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"progresstracker/backend/config"
	"progresstracker/backend/controllers"
	"progresstracker/backend/middleware"
	"progresstracker/backend/repository"
	"progresstracker/backend/services"
)

func SetupRoutes(app *fiber.App, db *gorm.DB, cfg *config.Config) {
	hierarchy := repository.NewHierarchyStore(db)
	progress := repository.NewProgressStore(db)
	completion := services.NewCompletionService(hierarchy, progress)
	analytics := services.NewAnalyticsService(hierarchy, progress)

	// Auth routes
	authController := controllers.NewAuthController(db, cfg)
	app.Post("/api/auth/register", authController.Register)
	app.Post("/api/auth/login", authController.Login)

	// Middleware
	authMiddleware := middleware.AuthMiddleware(cfg)

	// User routes
	userController := controllers.NewUserController(db, cfg)
	app.Get("/api/user/profile", authMiddleware, userController.GetProfile)
	app.Put("/api/user/profile", authMiddleware, userController.UpdateProfile)

	// Syllabus routes
	syllabusController := controllers.NewSyllabusController(db, cfg, completion)
	app.Get("/api/syllabi/public", syllabusController.GetPublicSyllabi)
	app.Get("/api/syllabi/shared/:link", syllabusController.GetSyllabusByShareableLink)
	syllabi := app.Group("/api/syllabi", authMiddleware)
	syllabi.Post("/", syllabusController.CreateSyllabus)
	syllabi.Get("/", syllabusController.GetUserSyllabi)
	syllabi.Get("/:id", syllabusController.GetSyllabus)
	syllabi.Put("/:id", syllabusController.UpdateSyllabus)
	syllabi.Delete("/:id", syllabusController.DeleteSyllabus)
	syllabi.Post("/:id/share", syllabusController.GenerateShareableLink)
	syllabi.Delete("/:id/share", syllabusController.RevokeShareableLink)

	// Subject routes
	subjectController := controllers.NewSubjectController(db, cfg, hierarchy, completion)
	subjects := app.Group("/api/subjects", authMiddleware)
	subjects.Post("/syllabus/:syllabusId", subjectController.CreateSubject)
	subjects.Get("/syllabus/:syllabusId", subjectController.GetSubjectsBySyllabus)
	subjects.Put("/syllabus/:syllabusId/reorder", subjectController.ReorderSubjects)
	subjects.Get("/:id", subjectController.GetSubject)
	subjects.Put("/:id", subjectController.UpdateSubject)
	subjects.Delete("/:id", subjectController.DeleteSubject)

	// Topic routes
	topicController := controllers.NewTopicController(db, cfg, hierarchy, completion)
	topics := app.Group("/api/topics", authMiddleware)
	topics.Post("/subject/:subjectId", topicController.CreateTopic)
	topics.Get("/subject/:subjectId", topicController.GetTopicsBySubject)
	topics.Put("/subject/:subjectId/reorder", topicController.ReorderTopics)
	topics.Get("/:id", topicController.GetTopic)
	topics.Put("/:id", topicController.UpdateTopic)
	topics.Delete("/:id", topicController.DeleteTopic)

	// SubTopic routes
	subTopicController := controllers.NewSubTopicController(db, cfg, hierarchy, completion)
	subTopics := app.Group("/api/subtopics", authMiddleware)
	subTopics.Post("/topic/:topicId", subTopicController.CreateSubTopic)
	subTopics.Get("/topic/:topicId", subTopicController.GetSubTopicsByTopic)
	subTopics.Put("/topic/:topicId/reorder", subTopicController.ReorderSubTopics)
	subTopics.Get("/:id", subTopicController.GetSubTopic)
	subTopics.Put("/:id", subTopicController.UpdateSubTopic)
	subTopics.Delete("/:id", subTopicController.DeleteSubTopic)

	// Resource routes
	resourceController := controllers.NewResourceController(db, cfg, hierarchy)
	resources := app.Group("/api/resources", authMiddleware)
	resources.Get("/item/:itemType/:itemId", resourceController.GetResourcesByItem)
	resources.Post("/:itemType/:itemId", resourceController.CreateResource)
	resources.Get("/:id", resourceController.GetResource)
	resources.Put("/:id", resourceController.UpdateResource)
	resources.Delete("/:id", resourceController.DeleteResource)

	// Progress routes
	progressController := controllers.NewProgressController(db, cfg, hierarchy)
	progressGroup := app.Group("/api/progress", authMiddleware)
	progressGroup.Post("/", progressController.CreateProgressEntry)
	progressGroup.Get("/", progressController.GetUserProgressEntries)
	progressGroup.Get("/date-range", progressController.GetProgressEntriesByDateRange)
	progressGroup.Get("/:id", progressController.GetProgressEntry)
	progressGroup.Put("/:id", progressController.UpdateProgressEntry)
	progressGroup.Delete("/:id", progressController.DeleteProgressEntry)

	// Analytics routes
	analyticsController := controllers.NewAnalyticsController(db, cfg, completion, analytics)
	analyticsGroup := app.Group("/api/analytics", authMiddleware)
	analyticsGroup.Get("/completion/:syllabusId", analyticsController.GetSyllabusCompletionSummary)
	analyticsGroup.Get("/summary", analyticsController.GetProgressSummary)
	analyticsGroup.Get("/time-distribution", analyticsController.GetTimeDistribution)
	analyticsGroup.Get("/streak", analyticsController.GetCurrentStreak)
}
