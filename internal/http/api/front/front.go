package front

import (
	"github.com/careerhub/careerhub/internal/career"
	"github.com/careerhub/careerhub/internal/http/api/front/handlers"
	"github.com/careerhub/careerhub/internal/ledger"
	"github.com/careerhub/careerhub/internal/session"
	"github.com/gin-gonic/gin"
)

// Dependencies are the collaborators of the front API.
type Dependencies struct {
	Sessions    *session.Manager
	Engine      *ledger.Engine
	Career      *career.Store
	Upstream    handlers.Upstream
	SignupGrant int64
}

// RegisterFrontRoutes registers public and session-protected client routes.
func RegisterFrontRoutes(r *gin.Engine, deps Dependencies) {
	if r == nil || deps.Sessions == nil || deps.Engine == nil || deps.Career == nil || deps.Upstream == nil {
		return
	}

	api := r.Group("/api")

	authHandler := handlers.NewAuthHandler(deps.Upstream, deps.Sessions, deps.Engine, deps.Career, deps.SignupGrant)
	api.POST("/auth/signup", authHandler.Signup)
	api.POST("/auth/check-email", authHandler.CheckEmail)
	api.POST("/auth/login", authHandler.Login)
	api.POST("/auth/logout", authHandler.Logout)

	authed := api.Group("")
	authed.Use(deps.Sessions.RequireSession())
	authed.GET("/auth/me", authHandler.Me)

	tokenHandler := handlers.NewTokenHandler(deps.Engine)
	authed.GET("/tokens/balance", tokenHandler.Balance)
	authed.GET("/tokens/history", tokenHandler.History)
	authed.GET("/tokens/services", tokenHandler.Services)
	authed.POST("/tokens/use", tokenHandler.Use)

	referralHandler := handlers.NewReferralHandler(deps.Career)
	authed.GET("/referrals/code", referralHandler.Code)
	authed.POST("/referrals/code/generate", referralHandler.Generate)
	authed.GET("/referrals", referralHandler.List)
	authed.POST("/referrals/redeem", referralHandler.Redeem)

	careerHandler := handlers.NewCareerHandler(deps.Career, deps.Upstream)
	authed.GET("/experiences", careerHandler.ListExperiences)
	authed.POST("/experiences", careerHandler.CreateExperience)
	authed.PUT("/experiences/:id", careerHandler.UpdateExperience)
	authed.DELETE("/experiences/:id", careerHandler.DeleteExperience)

	authed.GET("/portfolio", careerHandler.ListPortfolio)
	authed.POST("/portfolio", careerHandler.CreatePortfolioItem)

	authed.GET("/recommended-users", careerHandler.ListRecommendations)
	authed.POST("/recommended-users/:id/accept", careerHandler.AcceptRecommendation)
	authed.POST("/recommended-users/:id/reject", careerHandler.RejectRecommendation)

	authed.GET("/messages", careerHandler.ListMessages)
	authed.POST("/messages", careerHandler.SendMessage)

	authed.GET("/search-profiles", careerHandler.SearchProfiles)
	authed.GET("/ex-search-profiles", careerHandler.SearchExternalProfiles)

	authed.GET("/jobs", careerHandler.ListJobs)
	authed.POST("/jobs/:id/save", careerHandler.SaveJob)
	authed.POST("/jobs/:id/apply", careerHandler.ApplyJob)

	authed.GET("/clone", careerHandler.GetClone)
	authed.POST("/clone/generate", careerHandler.GenerateClone)

	authed.GET("/programs", careerHandler.ListPrograms)
	authed.POST("/programs/:id/apply", careerHandler.ApplyProgram)

	authed.GET("/selfIntrFeedBack", careerHandler.ListSelfIntroFeedback)
	authed.POST("/selfIntrFeedBack", careerHandler.RequestSelfIntroFeedback)
}
