package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// CurveballKey is the top-level dataset key holding the curveball pool.
const CurveballKey = "curveball"

// CoursePool holds a course's items, either as one flat list or split by difficulty.
type CoursePool struct {
	Flat         []RoundItem
	ByDifficulty map[Difficulty][]RoundItem
}

// Resolve returns the items for a difficulty. Flat pools ignore the difficulty.
func (p CoursePool) Resolve(d Difficulty) []RoundItem {
	if p.ByDifficulty == nil {
		return p.Flat
	}
	return p.ByDifficulty[d]
}

func (p CoursePool) MarshalJSON() ([]byte, error) {
	if p.ByDifficulty != nil {
		return json.Marshal(p.ByDifficulty)
	}
	if p.Flat == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(p.Flat)
}

func (p *CoursePool) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var items []RoundItem
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return err
		}
		*p = CoursePool{Flat: items}
		return nil
	}
	var buckets map[Difficulty][]RoundItem
	if err := json.Unmarshal(trimmed, &buckets); err != nil {
		return err
	}
	if buckets == nil {
		buckets = map[Difficulty][]RoundItem{}
	}
	*p = CoursePool{ByDifficulty: buckets}
	return nil
}

// Dataset maps course names to pools, plus an optional curveball pool.
type Dataset struct {
	Courses   map[string]CoursePool
	Curveball []RoundItem
}

// DecodeDataset parses a dataset JSON document.
func DecodeDataset(data []byte) (Dataset, error) {
	var ds Dataset
	if err := json.Unmarshal(data, &ds); err != nil {
		return Dataset{}, err
	}
	return ds, nil
}

func (d *Dataset) UnmarshalJSON(data []byte) error {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		return fmt.Errorf("dataset: %w", err)
	}
	out := Dataset{Courses: make(map[string]CoursePool, len(top))}
	for key, raw := range top {
		if key == CurveballKey {
			if err := json.Unmarshal(raw, &out.Curveball); err != nil {
				return fmt.Errorf("dataset curveball: %w", err)
			}
			continue
		}
		var pool CoursePool
		if err := json.Unmarshal(raw, &pool); err != nil {
			return fmt.Errorf("dataset course %q: %w", key, err)
		}
		out.Courses[key] = pool
	}
	*d = out
	return nil
}

func (d Dataset) MarshalJSON() ([]byte, error) {
	top := make(map[string]any, len(d.Courses)+1)
	for name, pool := range d.Courses {
		top[name] = pool
	}
	if len(d.Curveball) > 0 {
		top[CurveballKey] = d.Curveball
	}
	return json.Marshal(top)
}

// HasCourse reports whether the course key exists, regardless of pool contents.
func (d Dataset) HasCourse(course string) bool {
	_, ok := d.Courses[course]
	return ok
}

// Pool resolves the non-empty pool for course and difficulty.
func (d Dataset) Pool(course string, difficulty Difficulty) ([]RoundItem, error) {
	pool, ok := d.Courses[course]
	if !ok {
		return nil, fmt.Errorf("%w: course %q", ErrPoolNotFound, course)
	}
	items := pool.Resolve(difficulty)
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: course %q difficulty %q", ErrPoolNotFound, course, difficulty)
	}
	return items, nil
}

// Difficulties lists the difficulties that resolve to a non-empty pool for course.
func (d Dataset) Difficulties(course string) []Difficulty {
	var out []Difficulty
	for _, diff := range Difficulties {
		if _, err := d.Pool(course, diff); err == nil {
			out = append(out, diff)
		}
	}
	return out
}

// CourseNames returns the course keys sorted.
func (d Dataset) CourseNames() []string {
	names := make([]string, 0, len(d.Courses))
	for name := range d.Courses {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
