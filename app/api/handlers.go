package api

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"hnpulse/app/cfg"
	"hnpulse/app/config"
	"hnpulse/app/database"
	"hnpulse/app/tasks"
)

func NewHandler(sources map[string]*config.Source, articleRepo database.ArticleRepository,
	snapshotRepo database.SnapshotRepository, analyzer AnalyzerInterface,
	scheduler tasks.TaskSchedulerInterface, httpClient *http.Client) *Handler {
	return &Handler{
		sources:      sources,
		articleRepo:  articleRepo,
		snapshotRepo: snapshotRepo,
		analyzer:     analyzer,
		scheduler:    scheduler,
		httpClient:   httpClient,
	}
}

func (h *Handler) GetArticle(c *gin.Context) {
	externalID := c.Param("id")
	if externalID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing article id parameter"})
		return
	}

	article, err := h.articleRepo.GetArticle(externalID)
	if err != nil {
		slog.Error("Database error", "operation", "get_article", "external_id", externalID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	if article == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Article not found"})
		return
	}

	c.JSON(http.StatusOK, articleResponse(article))
}

func (h *Handler) GetArticleHistory(c *gin.Context) {
	externalID := c.Param("id")
	if externalID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing article id parameter"})
		return
	}

	article, err := h.articleRepo.GetArticle(externalID)
	if err != nil {
		slog.Error("Database error", "operation", "get_article", "external_id", externalID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	if article == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Article not found"})
		return
	}

	history, err := h.snapshotRepo.GetHistory(externalID)
	if err != nil {
		slog.Error("Database error", "operation", "get_history", "external_id", externalID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	snapshots := make([]map[string]interface{}, 0, len(history))
	for _, snapshot := range history {
		snapshots = append(snapshots, map[string]interface{}{
			"captured_at":   snapshot.CapturedAt.UTC().Format(time.RFC3339),
			"score":         snapshot.Score,
			"comment_count": snapshot.CommentCount,
			"rank":          snapshot.Rank,
		})
	}

	c.JSON(http.StatusOK, map[string]interface{}{
		"external_id": externalID,
		"title":       article.Title,
		"snapshots":   snapshots,
		"total":       len(snapshots),
	})
}

func (h *Handler) GetTrending(c *gin.Context) {
	windowHours, err := strconv.Atoi(c.DefaultQuery("window", "24"))
	if err != nil || windowHours <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid window parameter, expected positive hours"})
		return
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit parameter, expected positive count"})
		return
	}

	results, err := h.analyzer.Trending(windowHours, limit)
	if err != nil {
		slog.Error("Trending computation failed", "window_hours", windowHours, "limit", limit, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute trending articles"})
		return
	}

	c.JSON(http.StatusOK, map[string]interface{}{
		"window_hours": windowHours,
		"limit":        limit,
		"results":      results,
		"total":        len(results),
	})
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
	}

	if articleCount, err := h.articleRepo.GetArticleCount(); err == nil {
		health["articles"] = articleCount
	}

	if snapshotCount, err := h.snapshotRepo.GetSnapshotCount(); err == nil {
		health["snapshots"] = snapshotCount
	}

	health["loaded_sources"] = len(h.sources)

	c.JSON(http.StatusOK, health)
}

func (h *Handler) GetStats(c *gin.Context) {
	stats := map[string]interface{}{}

	if articleCount, err := h.articleRepo.GetArticleCount(); err == nil {
		stats["article_count"] = articleCount
	}

	if snapshotCount, err := h.snapshotRepo.GetSnapshotCount(); err == nil {
		stats["snapshot_count"] = snapshotCount
	}

	if topDomains, err := h.articleRepo.GetTopDomains(10); err == nil {
		domains := make([]map[string]interface{}, 0, len(topDomains))
		for _, d := range topDomains {
			domains = append(domains, map[string]interface{}{
				"domain": d.Domain,
				"count":  d.Count,
			})
		}
		stats["top_domains"] = domains
	}

	sources := make([]map[string]interface{}, 0, len(h.sources))
	for _, source := range h.sources {
		sources = append(sources, map[string]interface{}{
			"name":          source.Name,
			"url":           source.URL,
			"kind":          source.Kind,
			"enabled":       source.Settings.Enabled,
			"pages":         source.Settings.Pages,
			"poll_interval": source.Settings.GetPollInterval().String(),
			"upsert_policy": source.Settings.UpsertPolicy,
		})
	}
	stats["sources"] = sources

	c.JSON(http.StatusOK, stats)
}

func (h *Handler) APIPollSource(c *gin.Context) {
	name := c.Param("name")
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing source name parameter"})
		return
	}

	source, ok := h.sources[name]
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Source configuration not found"})
		return
	}

	appCfg := cfg.Get()
	pollTask := tasks.NewPollSourceTask(name, source, h.httpClient, h.articleRepo, h.snapshotRepo, appCfg.UserAgent, appCfg.WorkerCount)

	if err := h.scheduler.EnqueueTask(pollTask); err != nil {
		slog.Error("Error enqueueing poll task", "source", name, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to enqueue poll task",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Poll task enqueued successfully",
		"source": gin.H{
			"name": name,
			"url":  source.URL,
		},
		"task": gin.H{
			"id":   pollTask.ID,
			"type": pollTask.Type,
		},
	})
}

func articleResponse(article *database.Article) map[string]interface{} {
	return map[string]interface{}{
		"external_id":    article.ExternalID,
		"title":          article.Title,
		"canonical_url":  article.CanonicalURL,
		"domain":         article.Domain,
		"author":         article.Author,
		"first_seen":     article.FirstSeen.UTC().Format(time.RFC3339),
		"last_updated":   article.LastUpdated.UTC().Format(time.RFC3339),
		"score":          article.Score,
		"comment_count":  article.CommentCount,
		"rank":           article.Rank,
		"content_length": article.ContentLength,
	}
}
