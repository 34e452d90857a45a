package catalog

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/skillmatch-cloud/skillmatch/internal/domain"
)

// Hash field names for assessment records.
const (
	fieldName        = "name"
	fieldURL         = "url"
	fieldDescription = "description"
	fieldCategory    = "category"
	fieldDuration    = "duration"
	fieldSkills      = "skills"
	fieldSeq         = "seq"
	fieldVector      = "vector"
)

// skillSeparator joins skill tags in the hash field. Unit separator avoids
// collisions with commas inside skill names.
const skillSeparator = "\x1f"

// toFields flattens an assessment into Redis hash fields.
func toFields(a *domain.Assessment, vector []float32) map[string]string {
	fields := map[string]string{
		fieldName:     a.Name,
		fieldURL:      a.URL,
		fieldCategory: string(a.Category),
		fieldSeq:      strconv.Itoa(a.Seq),
	}
	if a.Description != "" {
		fields[fieldDescription] = a.Description
	}
	if a.DurationMinutes > 0 {
		fields[fieldDuration] = strconv.Itoa(a.DurationMinutes)
	}
	if len(a.Skills) > 0 {
		fields[fieldSkills] = strings.Join(a.Skills, skillSeparator)
	}
	if len(vector) > 0 {
		fields[fieldVector] = vectorToBytes(vector)
	}
	return fields
}

// fromFields rebuilds an assessment from Redis hash fields.
func fromFields(id string, fields map[string]string) (domain.Assessment, error) {
	cat, err := domain.ParseCategory(fields[fieldCategory])
	if err != nil {
		return domain.Assessment{}, fmt.Errorf("record %s: %w", id, err)
	}

	a := domain.Assessment{
		ID:          id,
		Name:        fields[fieldName],
		URL:         fields[fieldURL],
		Description: fields[fieldDescription],
		Category:    cat,
	}
	if a.Name == "" {
		return domain.Assessment{}, fmt.Errorf("record %s: name is required", id)
	}

	if v, ok := fields[fieldDuration]; ok {
		d, err := strconv.Atoi(v)
		if err != nil {
			return domain.Assessment{}, fmt.Errorf("record %s: bad duration %q", id, v)
		}
		a.DurationMinutes = d
	}
	if v, ok := fields[fieldSeq]; ok {
		seq, err := strconv.Atoi(v)
		if err != nil {
			return domain.Assessment{}, fmt.Errorf("record %s: bad seq %q", id, v)
		}
		a.Seq = seq
	}
	if v, ok := fields[fieldSkills]; ok && v != "" {
		a.Skills = strings.Split(v, skillSeparator)
	}

	return a, nil
}
