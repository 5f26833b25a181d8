package devserver

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// paymentPackages mirrors the client catalog: sessions credited per index.
var paymentPackages = []int{5, 7, 10}

// registerRoutes sets up the API routes on the Gin router.
func registerRoutes(router *gin.Engine, db *gorm.DB) {
	api := router.Group("/API")

	api.POST("/Account/Authorization", handleAuthorize(db))
	api.POST("/Account/Registration", handleRegister(db))

	authed := api.Group("", requireAuth(db))
	authed.GET("/Account/About", handleAbout(db))
	authed.GET("/Session/History", handleHistory(db))
	authed.PATCH("/Session", handleOpenSession(db))
	authed.POST("/Session", handlePayment(db))
	authed.POST("/Mood/Add", handleAddMood(db))
	authed.GET("/Mood/Statistics", handleStatistics(db))
}

// requireAuth resolves the authToken cookie to an account; 401 otherwise.
func requireAuth(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie("authToken")
		if err != nil || token == "" {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		var account Account
		if err := db.Where("token = ?", token).First(&account).Error; err != nil {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		c.Set("account", account)
		c.Next()
	}
}

func currentAccount(c *gin.Context) Account {
	return c.MustGet("account").(Account)
}

func handleAuthorize(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Login    string `json:"login"`
			Password string `json:"password"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.Status(http.StatusBadRequest)
			return
		}

		var account Account
		err := db.Where("login = ?", strings.TrimSpace(req.Login)).First(&account).Error
		if err != nil || account.Password != req.Password {
			c.Status(http.StatusUnauthorized)
			return
		}

		account.Token = uuid.NewString()
		if err := db.Save(&account).Error; err != nil {
			c.Status(http.StatusInternalServerError)
			return
		}

		c.SetCookie("authToken", account.Token, 0, "/", "", false, true)
		c.SetCookie("id", itoa(account.ID), 0, "/", "", false, false)
		c.Status(http.StatusOK)
	}
}

func handleRegister(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Login    string `json:"login"`
			Password string `json:"password"`
			FullName string `json:"fullName"`
			Email    string `json:"email"`
			Phone    string `json:"phone"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.Status(http.StatusBadRequest)
			return
		}
		if strings.TrimSpace(req.Login) == "" || req.Password == "" {
			c.Status(http.StatusUnprocessableEntity)
			return
		}

		var existing Account
		err := db.Where("login = ?", strings.TrimSpace(req.Login)).First(&existing).Error
		if err == nil {
			c.Status(http.StatusConflict)
			return
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			c.Status(http.StatusInternalServerError)
			return
		}

		account := Account{
			Login:    strings.TrimSpace(req.Login),
			Password: req.Password,
			FullName: req.FullName,
			Email:    strings.TrimSpace(req.Email),
			Phone:    strings.TrimSpace(req.Phone),
		}
		if err := db.Create(&account).Error; err != nil {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.Status(http.StatusCreated)
	}
}

// handleAbout emits the account summary as a single positional content row:
// [id, fullName, phone, email, balance, avatarURL].
func handleAbout(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		account := currentAccount(c)
		row := []any{
			account.ID,
			account.FullName,
			account.Phone,
			account.Email,
			account.Balance,
			account.AvatarURL,
		}
		c.JSON(http.StatusOK, gin.H{"content": []any{row}})
	}
}

// handleHistory emits session tuples [id, "YYYY-MM-DD", status], newest
// last (the client re-sorts). No sessions at all is a 404.
func handleHistory(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		account := currentAccount(c)
		var sessions []TherapySession
		err := db.Where("account_id = ?", account.ID).Order("date asc").Find(&sessions).Error
		if err != nil {
			c.Status(http.StatusInternalServerError)
			return
		}
		if len(sessions) == 0 {
			c.Status(http.StatusNotFound)
			return
		}

		tuples := make([]any, 0, len(sessions))
		for _, s := range sessions {
			tuples = append(tuples, []any{s.ID, s.Date.Format("2006-01-02"), s.Status})
		}
		c.JSON(http.StatusOK, gin.H{"content": tuples})
	}
}

func handleOpenSession(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		account := currentAccount(c)

		var open TherapySession
		err := db.Where("account_id = ? AND open = ?", account.ID, true).First(&open).Error
		if err == nil {
			c.JSON(http.StatusOK, gin.H{"id": open.ID, "isNew": 0})
			return
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			c.Status(http.StatusInternalServerError)
			return
		}

		session := TherapySession{
			AccountID: account.ID,
			Date:      time.Now(),
			Status:    2,
			Open:      true,
		}
		if err := db.Create(&session).Error; err != nil {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"id": session.ID, "isNew": 1})
	}
}

// handlePayment credits the package's sessions immediately and hands back a
// fake redirect URL, the mock analog of a real checkout.
func handlePayment(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Index *int `json:"index"`
		}
		if err := c.ShouldBindJSON(&req); err != nil || req.Index == nil {
			c.Status(http.StatusBadRequest)
			return
		}
		idx := *req.Index
		if idx < 0 || idx >= len(paymentPackages) {
			c.Status(http.StatusNotFound)
			return
		}

		account := currentAccount(c)
		account.Balance += paymentPackages[idx]
		if err := db.Save(&account).Error; err != nil {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.JSON(http.StatusAccepted, gin.H{
			"url": "http://localhost/checkout/" + itoa(uint(idx)),
		})
	}
}

func handleAddMood(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Mood      string `json:"mood"`
			Score     int    `json:"score"`
			Note      string `json:"note"`
			Timestamp string `json:"timestamp"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.Status(http.StatusBadRequest)
			return
		}
		if req.Score < 1 || req.Score > 5 {
			c.Status(http.StatusBadRequest)
			return
		}

		ts := time.Now()
		if req.Timestamp != "" {
			if parsed, err := time.Parse(time.RFC3339, req.Timestamp); err == nil {
				ts = parsed
			}
		}

		account := currentAccount(c)
		record := MoodRecord{
			AccountID: account.ID,
			Mood:      req.Mood,
			Score:     req.Score,
			Note:      req.Note,
			Timestamp: ts,
		}
		if err := db.Create(&record).Error; err != nil {
			c.Status(http.StatusInternalServerError)
			return
		}

		// Mood check-ins also appear in the session history, with the score
		// collapsed to the 3-valued wire status.
		session := TherapySession{
			AccountID: account.ID,
			Date:      ts,
			Status:    scoreToStatus(req.Score),
		}
		if err := db.Create(&session).Error; err != nil {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.Status(http.StatusCreated)
	}
}

func handleStatistics(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		account := currentAccount(c)
		var records []MoodRecord
		err := db.Where("account_id = ?", account.ID).Order("timestamp asc").Find(&records).Error
		if err != nil {
			c.Status(http.StatusInternalServerError)
			return
		}
		if len(records) == 0 {
			c.Status(http.StatusNotFound)
			return
		}

		total := 0
		now := time.Now()
		thisMonth := 0
		for _, r := range records {
			total += r.Score
			if r.Timestamp.Year() == now.Year() && r.Timestamp.Month() == now.Month() {
				thisMonth++
			}
		}
		c.JSON(http.StatusOK, gin.H{
			"totalSessions":     len(records),
			"averageScore":      float64(total) / float64(len(records)),
			"streakDays":        streakDays(records, now),
			"sessionsThisMonth": thisMonth,
		})
	}
}

// scoreToStatus collapses a 1-5 score to the wire status: 1 good, 3 bad,
// 2 neutral.
func scoreToStatus(score int) int {
	switch {
	case score >= 4:
		return 1
	case score <= 2:
		return 3
	default:
		return 2
	}
}

// streakDays counts consecutive days with at least one record, walking back
// from today.
func streakDays(records []MoodRecord, now time.Time) int {
	days := make(map[string]bool, len(records))
	for _, r := range records {
		days[r.Timestamp.Format("2006-01-02")] = true
	}
	streak := 0
	for d := now; days[d.Format("2006-01-02")]; d = d.AddDate(0, 0, -1) {
		streak++
	}
	return streak
}

func itoa(v uint) string {
	return strconv.FormatUint(uint64(v), 10)
}
