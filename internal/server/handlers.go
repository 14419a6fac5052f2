package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/verte-zerg/asolens/internal/ingest"
	"github.com/verte-zerg/asolens/internal/model"
	"github.com/verte-zerg/asolens/internal/projection"
	"github.com/verte-zerg/asolens/internal/recommend"
	"github.com/verte-zerg/asolens/internal/stats"
	"github.com/verte-zerg/asolens/internal/store"
)

type datasetInfo struct {
	ID              string           `json:"id"`
	Source          string           `json:"source"`
	Schema          string           `json:"schema"`
	App             model.AppDetails `json:"app"`
	Keywords        int              `json:"keywords"`
	MissingFields   []string         `json:"missingFields"`
	AvailableFields []string         `json:"availableFields"`
	Issues          []model.RowIssue `json:"issues"`
}

type projectRequest struct {
	Keyword      string       `json:"keyword"`
	Volume       model.Metric `json:"volume"`
	Difficulty   model.Metric `json:"difficulty"`
	CurrentRank  model.Metric `json:"currentRank"`
	MaximumReach model.Metric `json:"maximumReach"`
	Horizons     []int        `json:"horizons"`
}

func (s *Server) handleAnalyze(c fiber.Ctx) error {
	mode, err := ingest.ParseMode(c.Query("mode"))
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, err.Error())
	}
	top := s.Cfg.Top
	if raw := c.Query("top"); raw != "" {
		top, err = strconv.Atoi(raw)
		if err != nil || top < 0 {
			return jsonError(c, fiber.StatusBadRequest, "top must be a non-negative integer")
		}
	}
	body := c.Body()
	if len(bytes.TrimSpace(body)) == 0 {
		return jsonError(c, fiber.StatusBadRequest, ingest.ErrEmptyInput.Error())
	}

	ds, err := ingest.Parse(bytes.NewReader(body), mode, ingest.Options{
		Source:   c.Query("source", "upload"),
		Backfill: s.backfiller(),
	})
	if err != nil {
		s.metrics.datasetFailed(string(mode))
		slog.Warn("dataset rejected", "mode", mode, "error", err)
		return jsonError(c, fiber.StatusBadRequest, err.Error())
	}
	if err := s.store.Replace(c.Context(), ds); err != nil {
		return err
	}
	s.metrics.datasetParsed(ds.Schema, len(ds.Keywords))
	slog.Info("dataset loaded", "id", ds.ID, "schema", ds.Schema, "keywords", len(ds.Keywords), "issues", len(ds.Issues))

	return c.JSON(fiber.Map{
		"dataset": describe(ds),
		"report":  stats.BuildReport(ds, top),
	})
}

func (s *Server) handleKeywords(c fiber.Ctx) error {
	filter := model.KeywordFilter{
		Query:      c.Query("q"),
		RankedOnly: c.Query("ranked") == "true",
	}
	var err error
	if filter.MinVolume, err = floatQuery(c, "minVolume"); err != nil {
		return jsonError(c, fiber.StatusBadRequest, err.Error())
	}
	if filter.MaxDifficulty, err = floatQuery(c, "maxDifficulty"); err != nil {
		return jsonError(c, fiber.StatusBadRequest, err.Error())
	}
	if raw := c.Query("limit"); raw != "" {
		if filter.Limit, err = strconv.Atoi(raw); err != nil || filter.Limit < 0 {
			return jsonError(c, fiber.StatusBadRequest, "limit must be a non-negative integer")
		}
	}
	keywords, err := s.store.Keywords(c.Context(), filter)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"keywords": keywords})
}

func (s *Server) handleMetadata(c fiber.Ctx) error {
	var req recommend.Request
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid JSON body")
	}
	if len(recommend.DedupKeywords(req.Keywords)) == 0 {
		return jsonError(c, fiber.StatusBadRequest, "keywords must not be empty")
	}
	known, err := s.currentKeywords(c)
	if err != nil {
		return err
	}
	resp := recommend.Generate(req, known)
	s.metrics.metadataOptions.Add(float64(len(resp.Options)))
	return c.JSON(resp)
}

func (s *Server) handleProject(c fiber.Ctx) error {
	var req projectRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid JSON body")
	}
	req.Keyword = strings.TrimSpace(req.Keyword)
	if req.Keyword == "" {
		return jsonError(c, fiber.StatusBadRequest, "keyword is required")
	}
	for _, h := range req.Horizons {
		if h <= 0 {
			return jsonError(c, fiber.StatusBadRequest, "horizons must be positive month counts")
		}
	}
	horizons := req.Horizons
	if len(horizons) == 0 {
		horizons = s.Cfg.Horizons
	}

	record := model.KeywordRecord{
		Keyword:      req.Keyword,
		Volume:       req.Volume,
		Difficulty:   req.Difficulty,
		CurrentRank:  req.CurrentRank,
		MaximumReach: req.MaximumReach,
	}
	if !req.Volume.Valid && !req.Difficulty.Valid && !req.CurrentRank.Valid {
		known, err := s.currentKeywords(c)
		if err != nil {
			return err
		}
		for _, r := range known {
			if strings.EqualFold(r.Keyword, req.Keyword) {
				record = r
				break
			}
		}
	}

	result := projection.Project(projection.InputFrom(record), horizons)
	growth := projection.ProjectGrowth(record, horizons, time.Now().Month(), 0)
	s.metrics.projections.Inc()
	return c.JSON(fiber.Map{
		"projection": result,
		"growth":     growth,
	})
}

func (s *Server) currentKeywords(c fiber.Ctx) ([]model.KeywordRecord, error) {
	ds, err := s.store.Dataset(c.Context())
	if errors.Is(err, store.ErrNoDataset) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return ds.Keywords, nil
}

func floatQuery(c fiber.Ctx, key string) (float64, error) {
	raw := c.Query(key)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fiber.NewError(fiber.StatusBadRequest, key+" must be a number")
	}
	return v, nil
}

func describe(ds model.ParsedDataset) datasetInfo {
	issues := ds.Issues
	if issues == nil {
		issues = []model.RowIssue{}
	}
	return datasetInfo{
		ID:              ds.ID,
		Source:          ds.Source,
		Schema:          ds.Schema,
		App:             ds.App,
		Keywords:        len(ds.Keywords),
		MissingFields:   ds.MissingFields,
		AvailableFields: ds.AvailableFields,
		Issues:          issues,
	}
}
