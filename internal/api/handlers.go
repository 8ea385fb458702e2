package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/vladimiradmaev/glycocare/internal/domain"
	apperrors "github.com/vladimiradmaev/glycocare/internal/errors"
	"github.com/vladimiradmaev/glycocare/internal/inference"
	"github.com/vladimiradmaev/glycocare/internal/logger"
	"github.com/vladimiradmaev/glycocare/internal/utils"
)

func (s *Server) bindJSON(c *gin.Context, dst any) bool {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes)
	if err := c.ShouldBindJSON(dst); err != nil {
		s.renderError(c, apperrors.NewValidationError("Invalid request body: "+err.Error()))
		return false
	}
	return true
}

func (s *Server) handleAnalyze(c *gin.Context) {
	var req analyzeRequest
	if !s.bindJSON(c, &req) {
		return
	}

	if strings.TrimSpace(req.ImageBase64) == "" {
		s.renderError(c, apperrors.NewValidationError("Missing imageBase64 in request body"))
		return
	}
	image, err := inference.ParseDataURL(req.ImageBase64)
	if err != nil {
		s.renderError(c, apperrors.NewValidationError("Invalid imageBase64: "+err.Error()))
		return
	}
	if req.Vitals == nil || !req.Vitals.snapshot("").HasGlucose() {
		s.renderError(c, apperrors.NewValidationError("Missing current glucose in vitals"))
		return
	}

	userID := callerID(c)
	result, err := s.services.Meals.AnalyzeMeal(c.Request.Context(), userID, image, req.Vitals.snapshot(userID))
	if err != nil {
		s.renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, newAnalyzeResponse(result))
}

func (s *Server) handleListMeals(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			s.renderError(c, apperrors.NewValidationError("invalid limit"))
			return
		}
		limit = parsed
	}

	meals, err := s.services.Meals.RecentMeals(c.Request.Context(), callerID(c), limit)
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"meals": meals})
}

func (s *Server) handleSaveMeal(c *gin.Context) {
	var req saveMealRequest
	if !s.bindJSON(c, &req) {
		return
	}

	userID := callerID(c)
	meal := &domain.MealRecord{
		UserID:     userID,
		Dish:       req.Dish,
		PortionG:   int(req.Portion),
		Delta:      utils.RoundTo(float64(req.PredictedDelta), 1),
		Confidence: float64(req.Confidence) / 100,
		Advice:     req.Advice,
		Tier:       req.Status,
	}
	var vitals *domain.VitalsSnapshot
	if req.Vitals != nil {
		v := req.Vitals.snapshot(userID)
		vitals = &v
	}

	if err := s.services.Meals.SaveMeal(c.Request.Context(), meal, vitals); err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, meal)
}

func (s *Server) handleRecordVitals(c *gin.Context) {
	var req vitalsPayload
	if !s.bindJSON(c, &req) {
		return
	}

	vitals := req.snapshot(callerID(c))
	if err := s.services.Vitals.RecordVitals(c.Request.Context(), &vitals); err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, vitals)
}

func (s *Server) handleDashboard(c *gin.Context) {
	d, err := s.services.Vitals.Dashboard(c.Request.Context(), callerID(c))
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

func (s *Server) handleGetProfile(c *gin.Context) {
	p, err := s.services.Profiles.GetProfile(c.Request.Context(), callerID(c))
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, newProfilePayload(p))
}

func (s *Server) handleUpdateProfile(c *gin.Context) {
	var req profilePayload
	if !s.bindJSON(c, &req) {
		return
	}

	userID := callerID(c)
	current, err := s.services.Profiles.GetProfile(c.Request.Context(), userID)
	if err != nil {
		s.renderError(c, err)
		return
	}

	profile := &domain.UserProfile{
		UserID:                    userID,
		TelegramID:                current.TelegramID,
		Name:                      req.Name,
		Age:                       req.Age,
		Weight:                    req.Weight,
		DiabetesType:              req.DiabetesType,
		HasBloodPressureCondition: req.HasBP,
		HasHeartCondition:         req.HasHeartCondition,
		Comorbidities:             req.Comorbidities,
	}
	if err := s.services.Profiles.UpdateProfile(c.Request.Context(), profile); err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, newProfilePayload(profile))
}

func (s *Server) handleChat(c *gin.Context) {
	var req chatRequest
	if !s.bindJSON(c, &req) {
		return
	}

	reply, err := s.services.Chat.Reply(c.Request.Context(), callerID(c), req.Message)
	if err != nil {
		// Model failures answer 502.
		if apperrors.TypeOf(err) == apperrors.ErrorTypeExternal {
			s.errs.Handle(c.Request.Context(), err)
			c.AbortWithStatusJSON(http.StatusBadGateway, errorResponse{Error: apperrors.PublicMessage(err), Kind: string(apperrors.ErrorTypeExternal)})
			return
		}
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, reply)
}

func (s *Server) handlePlanner(c *gin.Context) {
	plan, err := s.services.Planner.WeeklyPlan(c.Request.Context(), callerID(c))
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, plan)
}

func (s *Server) handleWebsocket(c *gin.Context) {
	// The upgrader has already written a response when Serve fails.
	if err := s.hub.Serve(c.Writer, c.Request, callerID(c)); err != nil {
		logger.WithContext(c.Request.Context()).Warn("Websocket upgrade failed", "error", err)
	}
}
