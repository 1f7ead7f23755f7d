package recognition

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ErrDisabled is returned when the external call is switched off by
// configuration. Callers treat it like any other failure: the record
// simply carries no FEN.
var ErrDisabled = errors.New("recognition disabled by configuration")

// Config holds the recognition service settings. The delay interval
// spaces out calls to respect the third party's usage limits.
type Config struct {
	Enabled  bool
	URL      string
	MinDelay time.Duration
	MaxDelay time.Duration
	Timeout  time.Duration
}

// DefaultConfig returns the settings for the public chessvision endpoint.
func DefaultConfig() Config {
	return Config{
		Enabled:  true,
		URL:      "http://app.chessvision.ai/predict",
		MinDelay: 1 * time.Second,
		MaxDelay: 5 * time.Second,
		Timeout:  10 * time.Second,
	}
}

// Result is one successful recognition outcome. Turn is the service's
// side-to-move prediction and is recorded independently of any turn
// parsed from solution text.
type Result struct {
	FEN  string
	Turn string
}

// Client wraps the external position-recognition call. Calls are
// strictly sequential: at most one request is in flight, and every
// request is preceded by a uniformly random delay within the configured
// interval.
type Client struct {
	cfg  Config
	http *http.Client
	log  *zap.Logger

	mu  sync.Mutex
	rng *rand.Rand
}

// NewClient creates a recognition client.
func NewClient(cfg Config, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
		log:  log,
		rng:  rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// predictRequest mirrors the service's wire format. The orientation is
// always left for the service to predict; crops are pre-cut board
// regions, so cropped is always true.
type predictRequest struct {
	BoardOrientation string `json:"board_orientation"`
	Cropped          bool   `json:"cropped"`
	CurrentPlayer    string `json:"current_player"`
	Image            string `json:"image"`
	PredictTurn      bool   `json:"predict_turn"`
}

type predictResponse struct {
	Result string `json:"result"`
	Turn   string `json:"turn"`
}

// Recognize sends the image at path to the service and returns its FEN
// and side-to-move. The call blocks for the random pre-call delay, then
// for the request itself, bounded by the configured timeout. Any
// transport or protocol failure is returned as an error; it is the
// caller's job to record "no result" and move on.
func (c *Client) Recognize(ctx context.Context, imagePath string) (*Result, error) {
	if !c.cfg.Enabled {
		return nil, ErrDisabled
	}

	data, err := os.ReadFile(imagePath)
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	delay := c.pickDelay()
	if delay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
	}

	start := time.Now()
	res, err := c.call(ctx, data)
	if err != nil {
		c.log.Warn("recognition call failed",
			zap.String("image", imagePath),
			zap.Duration("delay", delay),
			zap.Error(err))
		return nil, err
	}

	if !ValidFEN(res.FEN) {
		// Kept on the record regardless; the flag is for tuning runs.
		c.log.Warn("recognition returned unparseable fen",
			zap.String("image", imagePath),
			zap.String("fen", res.FEN))
	}
	if res.Turn == "" {
		if turn, ok := SideToMove(res.FEN); ok {
			res.Turn = turn
		}
	}

	c.log.Info("position recognized",
		zap.String("image", imagePath),
		zap.String("turn", res.Turn),
		zap.Duration("delay", delay),
		zap.Duration("latency", time.Since(start)))
	return res, nil
}

// pickDelay draws a uniform duration from [MinDelay, MaxDelay].
func (c *Client) pickDelay() time.Duration {
	min, max := c.cfg.MinDelay, c.cfg.MaxDelay
	if min < 0 {
		min = 0
	}
	if max <= min {
		return min
	}
	return min + time.Duration(c.rng.Int63n(int64(max-min)))
}

func (c *Client) call(ctx context.Context, image []byte) (*Result, error) {
	payload := predictRequest{
		BoardOrientation: "predict",
		Cropped:          true,
		CurrentPlayer:    "white",
		Image:            "data:image/png;base64," + base64.StdEncoding.EncodeToString(image),
		PredictTurn:      true,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.URL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("recognition service returned status %d", resp.StatusCode)
	}

	var parsed predictResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}
	if parsed.Result == "" {
		return nil, fmt.Errorf("recognition service returned no position")
	}

	return &Result{FEN: parsed.Result, Turn: parsed.Turn}, nil
}
