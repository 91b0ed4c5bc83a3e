package server

import (
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/greenloop-ai/ecoscan/internal/classify"
	"github.com/greenloop-ai/ecoscan/pkg/ecoscan"
)

// maxImageBytes bounds raw uploads.
const maxImageBytes = 20 << 20

type detectRequest struct {
	Image         string          `json:"image"` // base64, data-URL prefix allowed
	ModelVersion  string          `json:"model_version"`
	MinConfidence float64         `json:"min_confidence"`
	Quality       string          `json:"quality"`
	Device        *ecoscan.Device `json:"device_info"`
}

// detectPayload is the cacheable part of a detect response; timing is
// measured per request and never cached.
type detectPayload struct {
	Detections  []ecoscan.Detection `json:"detections"`
	ModelInfo   ecoscan.ModelInfo   `json:"model_info"`
	Suggestions []string            `json:"suggestions,omitempty"`
}

type detectResponse struct {
	detectPayload
	ProcessingTimeMS float64 `json:"processing_time_ms"`
}

func (s *Server) handleRoot(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"name":    "ecoscan",
		"version": Version,
		"status":  s.svc.Health().Status,
	})
}

func (s *Server) handleVersion(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"version": Version})
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, s.svc.Health())
}

func (s *Server) handleModels(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"models": s.svc.Models()})
}

func (s *Server) handleEnvironmentalImpact(c *gin.Context) {
	item := c.Param("item")
	impact, ok := s.svc.EnvironmentalImpact(item)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{
			"code":    "not_found",
			"message": "no environmental data for this item",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"item": item, "environmental_impact": impact})
}

func (s *Server) handleDetect(c *gin.Context) {
	start := time.Now()
	image, opts, err := parseDetectRequest(c)
	if err != nil {
		s.writeError(c, err)
		return
	}

	var cacheKey string
	if s.results != nil {
		cacheKey = s.results.key(image, opts)
		if body, ok := s.results.get(c.Request.Context(), cacheKey); ok {
			var payload detectPayload
			// A corrupt entry falls through to a fresh detection.
			if err := json.Unmarshal(body, &payload); err == nil {
				c.JSON(http.StatusOK, detectResponse{
					detectPayload:    payload,
					ProcessingTimeMS: millisSince(start),
				})
				return
			}
			s.logger.Warn("discarding unreadable cached detection", zap.String("key", cacheKey))
		}
	}

	res, err := s.svc.Detect(c.Request.Context(), image, opts)
	if err != nil {
		s.writeError(c, err)
		return
	}

	payload := detectPayload{
		Detections:  res.Detections,
		ModelInfo:   res.Model,
		Suggestions: res.Suggestions,
	}
	if s.results != nil {
		if body, err := json.Marshal(payload); err == nil {
			s.results.put(c.Request.Context(), cacheKey, body)
		}
	}

	c.JSON(http.StatusOK, detectResponse{
		detectPayload:    payload,
		ProcessingTimeMS: float64(res.ProcessingTime.Microseconds()) / 1000,
	})
}

func millisSince(start time.Time) float64 {
	return float64(time.Since(start).Microseconds()) / 1000
}

// parseDetectRequest accepts three upload shapes: a JSON envelope with a
// base64 image, a multipart form with an image file, or a raw image body
// with query-string options.
func parseDetectRequest(c *gin.Context) ([]byte, ecoscan.DetectOptions, error) {
	ct := c.ContentType()
	switch {
	case ct == "application/json":
		var req detectRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			return nil, ecoscan.DetectOptions{}, classify.NewError(classify.KindConfiguration, "malformed request body", err)
		}
		image, err := decodeBase64Image(req.Image)
		if err != nil {
			return nil, ecoscan.DetectOptions{}, err
		}
		return image, ecoscan.DetectOptions{
			ModelVersion:  req.ModelVersion,
			MinConfidence: req.MinConfidence,
			Quality:       req.Quality,
			Device:        req.Device,
		}, nil

	case strings.HasPrefix(ct, "multipart/form-data"):
		file, err := formImage(c)
		if err != nil {
			return nil, ecoscan.DetectOptions{}, err
		}
		opts, err := queryOptions(c.PostForm("model_version"), c.PostForm("min_confidence"), c.PostForm("quality"))
		if err != nil {
			return nil, ecoscan.DetectOptions{}, err
		}
		return file, opts, nil

	default:
		body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxImageBytes))
		if err != nil {
			return nil, ecoscan.DetectOptions{}, classify.NewError(classify.KindDecode, "could not read request body", err)
		}
		opts, err := queryOptions(c.Query("model_version"), c.Query("min_confidence"), c.Query("quality"))
		if err != nil {
			return nil, ecoscan.DetectOptions{}, err
		}
		return body, opts, nil
	}
}

func decodeBase64Image(data string) ([]byte, error) {
	if data == "" {
		return nil, classify.NewError(classify.KindDecode, "empty image payload", nil)
	}
	// Browser clients often send data URLs; strip the prefix.
	if i := strings.Index(data, ";base64,"); i >= 0 {
		data = data[i+len(";base64,"):]
	}
	image, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return nil, classify.NewError(classify.KindDecode, "image is not valid base64", err)
	}
	return image, nil
}

func formImage(c *gin.Context) ([]byte, error) {
	header, err := c.FormFile("image")
	if err != nil {
		header, err = c.FormFile("file")
	}
	if err != nil {
		return nil, classify.NewError(classify.KindDecode, "multipart request carries no image file", err)
	}
	f, err := header.Open()
	if err != nil {
		return nil, classify.NewError(classify.KindDecode, "could not open uploaded file", err)
	}
	defer f.Close()
	body, err := io.ReadAll(io.LimitReader(f, maxImageBytes))
	if err != nil {
		return nil, classify.NewError(classify.KindDecode, "could not read uploaded file", err)
	}
	return body, nil
}

func queryOptions(version, minConfidence, quality string) (ecoscan.DetectOptions, error) {
	opts := ecoscan.DetectOptions{ModelVersion: version, Quality: quality}
	if minConfidence != "" {
		f, err := strconv.ParseFloat(minConfidence, 64)
		if err != nil {
			return opts, classify.NewError(classify.KindConfiguration, "min_confidence must be a number", err)
		}
		opts.MinConfidence = f
	}
	return opts, nil
}

func (s *Server) handleOptimize(c *gin.Context) {
	var req struct {
		Device  ecoscan.Device `json:"device_info"`
		Quality string         `json:"quality"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		s.writeError(c, classify.NewError(classify.KindConfiguration, "malformed request body", err))
		return
	}

	res, err := s.svc.Optimize(req.Device, req.Quality)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (s *Server) handleFeedback(c *gin.Context) {
	var req ecoscan.FeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.writeError(c, classify.NewError(classify.KindConfiguration, "malformed request body", err))
		return
	}

	id, err := s.svc.SubmitFeedback(c.Request.Context(), req)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "status": "received"})
}

// writeError renders the stable error envelope. Internal causes go to the
// log, never to the client.
func (s *Server) writeError(c *gin.Context, err error) {
	kind := classify.KindOf(err)
	status := http.StatusInternalServerError
	switch kind {
	case classify.KindDecode, classify.KindConfiguration:
		status = http.StatusBadRequest
	case classify.KindNotReady:
		status = http.StatusServiceUnavailable
	}

	if status >= 500 {
		s.logger.Error("request error", zap.Error(err))
	}
	c.JSON(status, gin.H{"code": kind.String(), "message": classify.DetailOf(err)})
}
