package generator

import (
	"encoding/csv"
	"fmt"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"scorecard/models"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// Config controls one day of synthetic data
type Config struct {
	RunDate time.Time
	Apps    int
	Seed    int64
}

// Dataset holds generated rows keyed by entity, header first
type Dataset struct {
	RunDate time.Time
	Tables  map[string][][]string
}

// Rows returns the data rows of an entity without its header
func (d *Dataset) Rows(entity models.Entity) [][]string {
	table := d.Tables[entity.Name]
	if len(table) == 0 {
		return nil
	}
	return table[1:]
}

type choice struct {
	values  []string
	weights []float64
}

var (
	scorecardVersions = choice{[]string{"existing", "pilot"}, []float64{0.5, 0.5}}
	decisions         = choice{[]string{"approved", "declined"}, []float64{0.7, 0.3}}
	products          = choice{[]string{"standard", "gold", "platinum"}, []float64{0.5, 0.35, 0.15}}
	channels          = choice{[]string{"online", "branch"}, []float64{0.7, 0.3}}
	segments          = choice{[]string{"retail", "student"}, []float64{0.85, 0.15}}
	daysPastDue       = choice{[]string{"0", "30", "60", "90"}, []float64{0.85, 0.1, 0.04, 0.01}}
	defaultFlags      = choice{[]string{"0", "1"}, []float64{0.9, 0.1}}
)

const (
	activationWindowDays = 3
	activityWindowDays   = 30
	accountOpenRate      = 0.8
)

// Generator produces referentially consistent source files for a run date
type Generator struct {
	cfg Config
	rng *rand.Rand
}

// New creates a generator. The same seed and run date always produce the same files.
func New(cfg Config) *Generator {
	cfg.RunDate = models.NormalizeRunDate(cfg.RunDate)
	return &Generator{
		cfg: cfg,
		rng: rand.New(rand.NewSource(cfg.Seed)),
	}
}

// Generate builds all five tables in dependency order
func (g *Generator) Generate() (*Dataset, error) {
	if g.cfg.Apps < 0 {
		return nil, fmt.Errorf("invalid application count %d", g.cfg.Apps)
	}

	ds := &Dataset{RunDate: g.cfg.RunDate, Tables: make(map[string][][]string)}
	for _, e := range models.Entities {
		ds.Tables[e.Name] = [][]string{e.ColumnNames()}
	}

	for i := 0; i < g.cfg.Apps; i++ {
		appID, err := g.newID()
		if err != nil {
			return nil, err
		}
		decision := g.pick(decisions)
		ds.Tables[models.Applications.Name] = append(ds.Tables[models.Applications.Name], []string{
			appID,
			g.pick(scorecardVersions),
			decision,
			strconv.Itoa(300 + g.rng.Intn(550)),
			g.pick(products),
			g.pick(channels),
			g.pick(segments),
		})

		if decision != "approved" || g.rng.Float64() >= accountOpenRate {
			continue
		}
		if err := g.addAccount(ds, appID); err != nil {
			return nil, err
		}
	}

	return ds, nil
}

func (g *Generator) addAccount(ds *Dataset, appID string) error {
	accountID, err := g.newID()
	if err != nil {
		return err
	}
	ds.Tables[models.Accounts.Name] = append(ds.Tables[models.Accounts.Name], []string{
		accountID,
		appID,
		g.dateWithin(activationWindowDays),
	})

	for n := 1 + g.rng.Intn(4); n > 0; n-- {
		id, err := g.newID()
		if err != nil {
			return err
		}
		ds.Tables[models.Transactions.Name] = append(ds.Tables[models.Transactions.Name], []string{
			id, accountID, g.dateWithin(activityWindowDays), g.amount(100, 50),
		})
	}

	for n := 1 + g.rng.Intn(3); n > 0; n-- {
		id, err := g.newID()
		if err != nil {
			return err
		}
		ds.Tables[models.Payments.Name] = append(ds.Tables[models.Payments.Name], []string{
			id, accountID, g.dateWithin(activityWindowDays), g.amount(80, 40),
		})
	}

	ds.Tables[models.Delinquency.Name] = append(ds.Tables[models.Delinquency.Name], []string{
		accountID,
		g.pick(daysPastDue),
		g.pick(defaultFlags),
	})
	return nil
}

func (g *Generator) newID() (string, error) {
	id, err := uuid.NewRandomFromReader(g.rng)
	if err != nil {
		return "", fmt.Errorf("failed to generate id: %w", err)
	}
	return id.String(), nil
}

func (g *Generator) pick(c choice) string {
	r := g.rng.Float64()
	for i, w := range c.weights {
		if r < w {
			return c.values[i]
		}
		r -= w
	}
	return c.values[len(c.values)-1]
}

// dateWithin returns a date between days before the run date and the run date, inclusive
func (g *Generator) dateWithin(days int) string {
	offset := g.rng.Intn(days + 1)
	return models.FormatRunDate(g.cfg.RunDate.AddDate(0, 0, offset-days))
}

func (g *Generator) amount(mean, stddev float64) string {
	v := math.Abs(g.rng.NormFloat64()*stddev + mean)
	return strconv.FormatFloat(math.Round(v*100)/100, 'f', -1, 64)
}

// WriteDay generates the dataset and writes it to <root>/<run date>/
func (g *Generator) WriteDay(root string) (string, *Dataset, error) {
	ds, err := g.Generate()
	if err != nil {
		return "", nil, err
	}

	dir := filepath.Join(root, models.FormatRunDate(ds.RunDate))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", nil, fmt.Errorf("failed to create %s: %w", dir, err)
	}

	for _, e := range models.Entities {
		path := filepath.Join(dir, e.FileName())
		if err := writeCSV(path, ds.Tables[e.Name]); err != nil {
			return "", nil, err
		}
	}

	log.WithFields(log.Fields{
		"dir":          dir,
		"applications": len(ds.Rows(models.Applications)),
		"accounts":     len(ds.Rows(models.Accounts)),
		"transactions": len(ds.Rows(models.Transactions)),
		"payments":     len(ds.Rows(models.Payments)),
		"seed":         g.cfg.Seed,
	}).Info("Generated synthetic data")
	return dir, ds, nil
}

func writeCSV(path string, records [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.WriteAll(records); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}
