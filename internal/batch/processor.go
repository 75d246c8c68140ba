// Package batch imports intake records from JSON Lines files with a bounded
// worker pool.
package batch

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	apperrors "github.com/gmsas95/nutritrack/internal/errors"
	"github.com/gmsas95/nutritrack/internal/nutrition"
	"github.com/gmsas95/nutritrack/internal/result"
	"github.com/gmsas95/nutritrack/internal/security"
	"github.com/gmsas95/nutritrack/internal/store"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Saver persists one intake record.
type Saver interface {
	Execute(ctx context.Context, intake *store.MealIntake) result.Result[*store.MealIntake]
}

type Config struct {
	MaxConcurrency int
	Timeout        time.Duration // per record, including retries
	RetryCount     int
	RetryDelay     time.Duration
	RecordsPerSec  float64 // 0 = unlimited
	SkipInvalid    bool
}

func DefaultConfig() Config {
	return Config{
		MaxConcurrency: 4,
		Timeout:        10 * time.Second,
		RetryCount:     2,
		RetryDelay:     200 * time.Millisecond,
		SkipInvalid:    true,
	}
}

// InputItem is one line of an import file.
type InputItem struct {
	Line        int                    `json:"-"`
	MealID      string                 `json:"meal_id"`
	MealName    string                 `json:"meal_name"`
	Date        string                 `json:"date"`
	Category    nutrition.MealCategory `json:"category"`
	Calories    float64                `json:"calories"`
	PortionSize float64                `json:"portion_size"`
	IsConsumed  bool                   `json:"is_consumed"`
}

type OutputItem struct {
	Line     int    `json:"line"`
	IntakeID string `json:"intake_id,omitempty"`
	Success  bool   `json:"success"`
	Skipped  bool   `json:"skipped,omitempty"`
	Error    string `json:"error,omitempty"`
	Attempts int    `json:"attempts"`
}

type Result struct {
	Total     int           `json:"total"`
	Success   int           `json:"success"`
	Failed    int           `json:"failed"`
	Skipped   int           `json:"skipped"`
	Duration  time.Duration `json:"duration"`
	Items     []OutputItem  `json:"items"`
	StartTime time.Time     `json:"start_time"`
	EndTime   time.Time     `json:"end_time"`
}

type Processor struct {
	saver   Saver
	config  Config
	limiter *rate.Limiter
	logger  *zap.Logger
}

func NewProcessor(saver Saver, cfg Config, logger *zap.Logger) *Processor {
	if cfg.MaxConcurrency <= 0 {
		cfg.MaxConcurrency = 1
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}

	limit := rate.Inf
	if cfg.RecordsPerSec > 0 {
		limit = rate.Limit(cfg.RecordsPerSec)
	}
	return &Processor{
		saver:   saver,
		config:  cfg,
		limiter: rate.NewLimiter(limit, cfg.MaxConcurrency),
		logger:  logger,
	}
}

// ProcessFile imports every record of path for userID.
func (p *Processor) ProcessFile(ctx context.Context, userID, path string) (*Result, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input file: %w", err)
	}
	defer file.Close()

	return p.Process(ctx, userID, file)
}

// Process imports JSON Lines read from r. Blank lines and lines starting
// with # are ignored.
func (p *Processor) Process(ctx context.Context, userID string, r io.Reader) (*Result, error) {
	res := &Result{StartTime: time.Now()}

	items, invalid, err := p.load(r)
	if err != nil {
		return nil, err
	}
	res.Total = len(items) + len(invalid)
	res.Items = make([]OutputItem, 0, res.Total)
	res.Items = append(res.Items, invalid...)
	res.Skipped = len(invalid)

	itemsChan := make(chan InputItem)
	resultsChan := make(chan OutputItem, len(items))

	var wg sync.WaitGroup
	for i := 0; i < p.config.MaxConcurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for item := range itemsChan {
				resultsChan <- p.processItem(ctx, userID, item)
			}
		}()
	}

	go func() {
		defer close(itemsChan)
		for _, item := range items {
			select {
			case itemsChan <- item:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(resultsChan)
	}()

	for out := range resultsChan {
		res.Items = append(res.Items, out)
		if out.Success {
			res.Success++
		} else {
			res.Failed++
		}
	}

	res.EndTime = time.Now()
	res.Duration = res.EndTime.Sub(res.StartTime)

	p.logger.Info("Intake import finished",
		zap.String("user_id", userID),
		zap.Int("total", res.Total),
		zap.Int("success", res.Success),
		zap.Int("failed", res.Failed),
		zap.Int("skipped", res.Skipped),
	)
	return res, ctx.Err()
}

func (p *Processor) processItem(ctx context.Context, userID string, item InputItem) OutputItem {
	out := OutputItem{Line: item.Line}

	ctx, cancel := context.WithTimeout(ctx, p.config.Timeout)
	defer cancel()

	intake := item.toIntake(userID)
	if err := security.ValidateName("meal_name", intake.MealName); err != nil {
		out.Error = err.Error()
		return out
	}
	var err error
	for attempt := 0; attempt <= p.config.RetryCount; attempt++ {
		if err = p.limiter.Wait(ctx); err != nil {
			break
		}
		out.Attempts++

		// retries reuse the ID so a slow first write is not duplicated
		var saved *store.MealIntake
		saved, err = result.Get(p.saver.Execute(ctx, intake))
		if err == nil {
			out.IntakeID = saved.ID
			out.Success = true
			return out
		}
		if !retryable(err) || attempt == p.config.RetryCount {
			break
		}

		select {
		case <-time.After(p.config.RetryDelay):
		case <-ctx.Done():
			out.Error = ctx.Err().Error()
			return out
		}
	}

	out.Error = err.Error()
	return out
}

// retryable is false for records the store rejected as invalid.
func retryable(err error) bool {
	return apperrors.GetCode(err) != apperrors.ErrIntakeInvalid.Code
}

func (p *Processor) load(r io.Reader) ([]InputItem, []OutputItem, error) {
	var (
		items   []InputItem
		invalid []OutputItem
	)

	scanner := bufio.NewScanner(r)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		var item InputItem
		if err := json.Unmarshal([]byte(line), &item); err != nil {
			if !p.config.SkipInvalid {
				return nil, nil, fmt.Errorf("line %d: %w", lineNum, err)
			}
			invalid = append(invalid, OutputItem{Line: lineNum, Skipped: true, Error: err.Error()})
			continue
		}
		item.Line = lineNum
		items = append(items, item)
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, fmt.Errorf("failed to read file: %w", err)
	}
	return items, invalid, nil
}

func (item InputItem) toIntake(userID string) *store.MealIntake {
	portion := item.PortionSize
	if portion == 0 {
		portion = 1
	}
	return &store.MealIntake{
		UserID:      userID,
		MealID:      item.MealID,
		MealName:    strings.TrimSpace(item.MealName),
		Date:        item.Date,
		Category:    nutrition.MealCategory(strings.ToUpper(strings.TrimSpace(string(item.Category)))),
		Calories:    item.Calories,
		PortionSize: portion,
		IsConsumed:  item.IsConsumed,
	}
}

func (r *Result) Summary() string {
	var sb strings.Builder
	sb.WriteString("=== Intake Import Summary ===\n")
	sb.WriteString(fmt.Sprintf("Total:     %d\n", r.Total))
	sb.WriteString(fmt.Sprintf("Success:   %d\n", r.Success))
	sb.WriteString(fmt.Sprintf("Failed:    %d\n", r.Failed))
	sb.WriteString(fmt.Sprintf("Skipped:   %d\n", r.Skipped))
	sb.WriteString(fmt.Sprintf("Duration:  %v\n", r.Duration))
	return sb.String()
}

func (r *Result) ToJSON() (string, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}
