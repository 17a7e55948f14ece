package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/oksasatya/videotube-api/internal/application"
	"github.com/oksasatya/videotube-api/internal/domain/entity"
	"github.com/oksasatya/videotube-api/pkg/helpers"
	"github.com/oksasatya/videotube-api/pkg/response"
	"github.com/oksasatya/videotube-api/pkg/validation"
)

type UserHandler struct {
	Svc     *application.UserService
	Logger  *logrus.Logger
	Cookies *helpers.Manager
}

func NewUserHandler(svc *application.UserService, logger *logrus.Logger, cookieDomain string, cookieSecure bool) *UserHandler {
	return &UserHandler{Svc: svc, Logger: logger, Cookies: helpers.NewCookie(cookieDomain, cookieSecure)}
}

type registerForm struct {
	FullName string `form:"fullName"`
	Email    string `form:"email" binding:"trimmed_email"`
	Username string `form:"username" binding:"trimmed_handle"`
	Password string `form:"password" binding:"omitempty,pwd"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"trimmed_email"`
	Username string `json:"username"`
	Password string `json:"password" binding:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type changePasswordRequest struct {
	OldPassword string `json:"oldPassword" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required,pwd"`
}

type updateAccountRequest struct {
	FullName string `json:"fullName" binding:"required,notblank"`
	Email    string `json:"email" binding:"required,email"`
}

type tokensResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

func tokenMeta(pair application.TokenPair) map[string]any {
	return map[string]any{"access_expires_at": pair.AccessTokenExpiry, "refresh_expires_at": pair.RefreshTokenExpiry}
}

// Register creates an account from a multipart form with avatar and optional cover image.
func (h *UserHandler) Register(c *gin.Context) {
	var form registerForm
	if err := c.ShouldBind(&form); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	avatar, closeAvatar, err := formFile(c, "avatar")
	if err != nil {
		badUpload(c, err)
		return
	}
	defer closeAvatar()
	cover, closeCover, err := formFile(c, "coverImage")
	if err != nil {
		badUpload(c, err)
		return
	}
	defer closeCover()

	u, err := h.Svc.Register(c.Request.Context(), application.RegisterInput{
		FullName:   form.FullName,
		Email:      form.Email,
		Username:   form.Username,
		Password:   form.Password,
		Avatar:     avatar,
		CoverImage: cover,
	})
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusCreated, u, "user registered successfully", nil)
}

func (h *UserHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	if strings.TrimSpace(req.Email) == "" && strings.TrimSpace(req.Username) == "" {
		response.Error(c, http.StatusBadRequest, "username or email is required", nil)
		return
	}

	u, pair, err := h.Svc.Login(c.Request.Context(), application.LoginInput{Email: req.Email, Username: req.Username, Password: req.Password})
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	h.Cookies.SetPair(c, pair.AccessToken, pair.AccessTokenExpiry, pair.RefreshToken, pair.RefreshTokenExpiry)
	response.Success(c, http.StatusOK, gin.H{
		"user":         u,
		"accessToken":  pair.AccessToken,
		"refreshToken": pair.RefreshToken,
	}, "user logged in successfully", tokenMeta(pair))
}

func (h *UserHandler) Logout(c *gin.Context) {
	uid, ok := callerID(c)
	if !ok {
		return
	}
	if err := h.Svc.Logout(c.Request.Context(), uid); err != nil {
		fail(c, h.Logger, err)
		return
	}
	h.Cookies.Clear(c)
	response.Success(c, http.StatusOK, gin.H{}, "user logged out", nil)
}

// RefreshAccessToken reads the refresh token from its cookie or the JSON body.
func (h *UserHandler) RefreshAccessToken(c *gin.Context) {
	token, _ := c.Cookie(helpers.RefreshCookie)
	if token == "" {
		var req refreshRequest
		_ = c.ShouldBindJSON(&req)
		token = req.RefreshToken
	}

	_, pair, err := h.Svc.Refresh(c.Request.Context(), token)
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	h.Cookies.SetPair(c, pair.AccessToken, pair.AccessTokenExpiry, pair.RefreshToken, pair.RefreshTokenExpiry)
	response.Success(c, http.StatusOK, tokensResponse{AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken}, "access token refreshed", tokenMeta(pair))
}

func (h *UserHandler) ChangePassword(c *gin.Context) {
	uid, ok := callerID(c)
	if !ok {
		return
	}
	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	if err := h.Svc.ChangePassword(c.Request.Context(), uid, req.OldPassword, req.NewPassword); err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{}, "password changed successfully", nil)
}

func (h *UserHandler) CurrentUser(c *gin.Context) {
	uid, ok := callerID(c)
	if !ok {
		return
	}
	u, err := h.Svc.CurrentUser(c.Request.Context(), uid)
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, u, "current user fetched successfully", nil)
}

func (h *UserHandler) UpdateAccount(c *gin.Context) {
	uid, ok := callerID(c)
	if !ok {
		return
	}
	var req updateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "all fields are required", validation.ToDetails(err))
		return
	}
	u, err := h.Svc.UpdateAccount(c.Request.Context(), uid, req.FullName, req.Email)
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, u, "account details updated successfully", nil)
}

func (h *UserHandler) UpdateAvatar(c *gin.Context) {
	h.updateMedia(c, "avatar", h.Svc.UpdateAvatar, "avatar updated successfully")
}

func (h *UserHandler) UpdateCoverImage(c *gin.Context) {
	h.updateMedia(c, "coverImage", h.Svc.UpdateCoverImage, "cover image updated successfully")
}

func (h *UserHandler) updateMedia(c *gin.Context, field string, update func(context.Context, primitive.ObjectID, *application.Upload) (*entity.User, error), message string) {
	uid, ok := callerID(c)
	if !ok {
		return
	}
	file, closeFile, err := formFile(c, field)
	if err != nil {
		badUpload(c, err)
		return
	}
	defer closeFile()

	u, err := update(c.Request.Context(), uid, file)
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, u, message, nil)
}

func (h *UserHandler) ChannelProfile(c *gin.Context) {
	uid, ok := callerID(c)
	if !ok {
		return
	}
	p, err := h.Svc.ChannelProfile(c.Request.Context(), c.Param("username"), uid)
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, p, "user channel fetched successfully", nil)
}

func (h *UserHandler) WatchHistory(c *gin.Context) {
	uid, ok := callerID(c)
	if !ok {
		return
	}
	videos, err := h.Svc.WatchHistory(c.Request.Context(), uid)
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, videos, "watch history fetched successfully", nil)
}

// Search queries the Elasticsearch users index: /users/search?q=jane&size=10
func (h *UserHandler) Search(c *gin.Context) {
	size, _ := strconv.Atoi(c.DefaultQuery("size", "10"))
	hits, err := h.Svc.SearchUsers(c.Request.Context(), c.Query("q"), size)
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, hits, "ok", map[string]any{"count": len(hits)})
}
