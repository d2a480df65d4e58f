package api

import (
	"net/http"

	"hnpulse/app/config"
	"hnpulse/app/database"
	"hnpulse/app/tasks"
	"hnpulse/app/trend"
)

type AnalyzerInterface interface {
	Trending(windowHours, limit int) ([]trend.Result, error)
}

var _ AnalyzerInterface = (*trend.Analyzer)(nil)

type Handler struct {
	sources      map[string]*config.Source
	articleRepo  database.ArticleRepository
	snapshotRepo database.SnapshotRepository
	analyzer     AnalyzerInterface
	scheduler    tasks.TaskSchedulerInterface
	httpClient   *http.Client
}
