// Package simulate implements the what-if simulator: build a hypothetical
// record, compare it against the dataset by weighted similarity and predict
// the target from the closest rows.
package simulate

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/datavue/datavue-cli/internal/backend"
	"github.com/datavue/datavue-cli/internal/dataset"
)

// neighborhoodSize caps how many closest rows vote on the prediction.
const neighborhoodSize = 20

// Field is one adjustable input of the simulator.
type Field struct {
	Name   string
	Type   dataset.ColumnType
	Stats  FieldStats
	Values []any
}

// FieldStats summarizes a field's distribution to seed sliders and defaults.
type FieldStats struct {
	Min    float64
	Max    float64
	Mean   float64
	Median float64
	Mode   any
}

// Simulator predicts the session target for a hypothetical record.
type Simulator struct {
	session *dataset.Session
	fields  []Field
	target  dataset.Column
}

// New builds a simulator over the session. Identifier-like and date columns
// are excluded from the adjustable fields. Without a target column the
// simulator runs in diagnostic mode: every prediction goes to the backend's
// trained model instead of the local neighborhood.
func New(session *dataset.Session) (*Simulator, error) {
	s := &Simulator{session: session}
	if session.Target != "" {
		target := dataset.ColumnByName(session.Columns, session.Target)
		if target == nil {
			return nil, fmt.Errorf("target column %q not found in session", session.Target)
		}
		s.target = *target
	}
	for _, col := range session.Columns {
		if !usableField(col, session.Target) {
			continue
		}
		s.fields = append(s.fields, Field{
			Name:   col.Name,
			Type:   col.Type,
			Stats:  fieldStats(session.Rows, col),
			Values: col.UniqueValues,
		})
	}
	if len(s.fields) == 0 {
		return nil, errors.New("no usable input fields: select at least one non-target column")
	}
	return s, nil
}

// Fields returns the adjustable inputs in session column order.
func (s *Simulator) Fields() []Field { return s.fields }

func usableField(col dataset.Column, target string) bool {
	if !col.Selected || col.Name == target {
		return false
	}
	lower := strings.ToLower(col.Name)
	if strings.Contains(lower, "id") || strings.Contains(lower, "target") {
		return false
	}
	return col.Type != dataset.TypeDate
}

func fieldStats(rows []dataset.Row, col dataset.Column) FieldStats {
	var st FieldStats
	switch col.Type {
	case dataset.TypeNumber, dataset.TypeBoolean:
		var nums []float64
		for _, row := range rows {
			if f, ok := dataset.AsNumber(row[col.Name]); ok {
				nums = append(nums, f)
			}
		}
		if len(nums) == 0 {
			return st
		}
		sort.Float64s(nums)
		st.Min = nums[0]
		st.Max = nums[len(nums)-1]
		var sum float64
		for _, f := range nums {
			sum += f
		}
		st.Mean = sum / float64(len(nums))
		if len(nums)%2 == 1 {
			st.Median = nums[len(nums)/2]
		} else {
			st.Median = (nums[len(nums)/2-1] + nums[len(nums)/2]) / 2
		}
		st.Mode = st.Median
	default:
		counts := map[string]int{}
		for _, row := range rows {
			if v := row[col.Name]; !dataset.IsNull(v) {
				if str, ok := v.(string); ok {
					counts[str]++
				}
			}
		}
		best, bestCount := "", -1
		for v, c := range counts {
			if c > bestCount || (c == bestCount && v < best) {
				best, bestCount = v, c
			}
		}
		if bestCount >= 0 {
			st.Mode = best
		}
	}
	return st
}

// AutoFill returns a complete record built from per-field defaults: the
// median for numeric fields and the most frequent value otherwise.
func (s *Simulator) AutoFill() map[string]any {
	record := make(map[string]any, len(s.fields))
	for _, f := range s.fields {
		switch f.Type {
		case dataset.TypeNumber:
			record[f.Name] = f.Stats.Median
		case dataset.TypeBoolean:
			record[f.Name] = f.Stats.Median >= 0.5
		default:
			if f.Stats.Mode != nil {
				record[f.Name] = f.Stats.Mode
			}
		}
	}
	return record
}

// Scenario returns a named preset record. "typical" mirrors AutoFill,
// "extreme" pushes numeric fields to their maximum and boolean fields on.
func (s *Simulator) Scenario(name string) (map[string]any, error) {
	switch name {
	case "typical":
		return s.AutoFill(), nil
	case "extreme":
		record := s.AutoFill()
		for _, f := range s.fields {
			switch f.Type {
			case dataset.TypeNumber:
				record[f.Name] = f.Stats.Max
			case dataset.TypeBoolean:
				record[f.Name] = true
			}
		}
		return record, nil
	default:
		return nil, fmt.Errorf("unknown scenario %q: use typical or extreme", name)
	}
}

// Result is one prediction outcome.
type Result struct {
	Class         string             `json:"class,omitempty"`
	Value         float64            `json:"value,omitempty"`
	Confidence    float64            `json:"confidence"`
	Distribution  map[string]float64 `json:"distribution,omitempty"`
	NeighborsUsed int                `json:"neighborsUsed"`
	Source        string             `json:"source"`
}

// Predict estimates the target for the given record from the most similar
// dataset rows. When no row bears any similarity to the record and a backend
// client is available, the backend's trained model is consulted instead. In
// diagnostic mode (no target column) the backend model is the only path.
func (s *Simulator) Predict(ctx context.Context, record map[string]any, client *backend.Client) (*Result, error) {
	if s.target.Name == "" {
		if client == nil {
			return nil, errors.New("no target column set and no backend available: run 'datavue columns --target <name>' first")
		}
		return s.remotePredict(ctx, record, client)
	}

	neighbors := s.neighborhood(record)
	if len(neighbors) > 0 {
		if s.target.Type == dataset.TypeNumber {
			return s.weightedAverage(neighbors), nil
		}
		return s.weightedVote(neighbors), nil
	}

	if client != nil {
		return s.remotePredict(ctx, record, client)
	}
	return nil, errors.New("no similar rows found and no backend available for model prediction")
}

type neighbor struct {
	row        dataset.Row
	similarity float64
}

// neighborhood scores every dataset row against the record and keeps the
// closest ones. Rows with zero similarity never enter the neighborhood.
func (s *Simulator) neighborhood(record map[string]any) []neighbor {
	var scored []neighbor
	for _, row := range s.session.Rows {
		if dataset.IsNull(row[s.target.Name]) {
			continue
		}
		if sim := s.similarity(record, row); sim > 0 {
			scored = append(scored, neighbor{row: row, similarity: sim})
		}
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].similarity > scored[j].similarity
	})
	if len(scored) > neighborhoodSize {
		scored = scored[:neighborhoodSize]
	}
	return scored
}

// similarity averages per-field closeness. Numeric fields score linearly by
// distance relative to the column range, booleans by equality, categorical
// fields 1 on an exact match and 0.5 otherwise.
func (s *Simulator) similarity(record map[string]any, row dataset.Row) float64 {
	var total float64
	var counted int
	for _, f := range s.fields {
		input, ok := record[f.Name]
		if !ok || input == nil {
			continue
		}
		counted++
		cell := row[f.Name]
		if dataset.IsNull(cell) {
			continue
		}
		switch f.Type {
		case dataset.TypeNumber:
			in, okIn := dataset.AsNumber(input)
			have, okHave := dataset.AsNumber(cell)
			if !okIn || !okHave {
				continue
			}
			span := f.Stats.Max - f.Stats.Min
			if span == 0 {
				if in == have {
					total++
				}
				continue
			}
			total += math.Max(0, 1-math.Abs(in-have)/span)
		case dataset.TypeBoolean:
			in, okIn := dataset.AsNumber(input)
			have, okHave := dataset.AsNumber(cell)
			if okIn && okHave && in == have {
				total++
			}
		default:
			if fmt.Sprint(input) == fmt.Sprint(cell) {
				total++
			} else {
				total += 0.5
			}
		}
	}
	if counted == 0 {
		return 0
	}
	return total / float64(counted)
}

// weightedVote predicts a class by similarity-weighted voting.
func (s *Simulator) weightedVote(neighbors []neighbor) *Result {
	weights := map[string]float64{}
	var total float64
	for _, n := range neighbors {
		class := fmt.Sprint(n.row[s.target.Name])
		weights[class] += n.similarity
		total += n.similarity
	}

	dist := make(map[string]float64, len(weights))
	best, bestWeight := "", -1.0
	for class, w := range weights {
		dist[class] = w / total
		if w > bestWeight || (w == bestWeight && class < best) {
			best, bestWeight = class, w
		}
	}
	return &Result{
		Class:         best,
		Confidence:    bestWeight / total,
		Distribution:  dist,
		NeighborsUsed: len(neighbors),
		Source:        "local",
	}
}

// weightedAverage predicts a numeric target by similarity-weighted mean.
func (s *Simulator) weightedAverage(neighbors []neighbor) *Result {
	var sum, total float64
	for _, n := range neighbors {
		f, ok := dataset.AsNumber(n.row[s.target.Name])
		if !ok {
			continue
		}
		sum += f * n.similarity
		total += n.similarity
	}
	if total == 0 {
		return &Result{NeighborsUsed: len(neighbors), Source: "local"}
	}
	return &Result{
		Value:         sum / total,
		Confidence:    avgSimilarity(neighbors),
		NeighborsUsed: len(neighbors),
		Source:        "local",
	}
}

func avgSimilarity(neighbors []neighbor) float64 {
	var total float64
	for _, n := range neighbors {
		total += n.similarity
	}
	return total / float64(len(neighbors))
}

// remotePredict maps the record to the numeric feature vector the backend
// model expects and scores it there.
func (s *Simulator) remotePredict(ctx context.Context, record map[string]any, client *backend.Client) (*Result, error) {
	features := make(map[string]float64, len(record))
	nonZero := 0
	for name, v := range record {
		if v == nil {
			continue
		}
		f, ok := dataset.AsNumber(v)
		if !ok {
			// Non-numeric inputs flag presence.
			if fmt.Sprint(v) != "" {
				f = 1
			}
		}
		features[name] = f
		if f != 0 {
			nonZero++
		}
	}
	if nonZero == 0 {
		return nil, errors.New("record has no active features to score")
	}

	resp, err := client.Predict(ctx, backend.PredictRequest{DatasetID: "default", Features: features})
	if err != nil {
		return nil, fmt.Errorf("model prediction: %w", err)
	}
	res := &Result{
		Class:      resp.TopPrediction.Class,
		Confidence: resp.TopPrediction.Probability,
		Source:     "backend",
	}
	if len(resp.Predictions) > 0 {
		res.Distribution = make(map[string]float64, len(resp.Predictions))
		for _, p := range resp.Predictions {
			res.Distribution[p.Class] = p.Probability
		}
	}
	return res, nil
}
