package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// StringSlice is stored as a JSON array. Quiz options routinely
// contain commas so a plain joined string can't be used.
type StringSlice []string

// Value implements the driver.Valuer interface.
func (s StringSlice) Value() (driver.Value, error) {
	if s == nil {
		s = StringSlice{}
	}

	b, err := json.Marshal([]string(s))
	if err != nil {
		return nil, err
	}

	return string(b), nil
}

// Scan implements the sql.Scanner interface.
func (s *StringSlice) Scan(value any) error {
	return scanJSON(value, s)
}

type Answer struct {
	QuestionID     int `json:"questionId"`
	SelectedAnswer int `json:"selectedAnswer"`
}

type AnswerList []Answer

func (a AnswerList) Value() (driver.Value, error) {
	if a == nil {
		a = AnswerList{}
	}

	b, err := json.Marshal([]Answer(a))
	if err != nil {
		return nil, err
	}

	return string(b), nil
}

func (a *AnswerList) Scan(value any) error {
	return scanJSON(value, a)
}

// Merge overlays other on top of a, keyed by question ID. Answers for
// questions that only exist in a are kept.
func (a AnswerList) Merge(other AnswerList) AnswerList {
	out := make(AnswerList, 0, len(a)+len(other))
	idx := make(map[int]int, len(a)+len(other))

	for _, list := range []AnswerList{a, other} {
		for _, ans := range list {
			if i, ok := idx[ans.QuestionID]; ok {
				out[i] = ans
				continue
			}

			idx[ans.QuestionID] = len(out)
			out = append(out, ans)
		}
	}

	return out
}

func scanJSON(value any, dst any) error {
	var b []byte

	switch v := value.(type) {
	case nil:
		b = []byte("[]")
	case string:
		b = []byte(v)
	case []byte:
		b = v
	default:
		return fmt.Errorf("failed to scan json column, %v", value)
	}

	if len(b) == 0 {
		b = []byte("[]")
	}

	return json.Unmarshal(b, dst)
}
