package redis

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"github.com/kailas-cloud/marketsearch/internal/db"
)

// XAdd appends an entry with an auto-generated id, trimming approximately to maxLen.
// Fields are written in key order so the command is deterministic.
func (s *Store) XAdd(ctx context.Context, key string, maxLen int64, fields map[string]string) (string, error) {
	if len(fields) == 0 {
		return "", fmt.Errorf("xadd requires at least one field")
	}
	names := make([]string, 0, len(fields))
	for k := range fields {
		names = append(names, k)
	}
	sort.Strings(names)

	args := make([]string, 0, 4+len(fields)*2)
	if maxLen > 0 {
		args = append(args, "MAXLEN", "~", strconv.FormatInt(maxLen, 10))
	}
	args = append(args, "*")
	for _, k := range names {
		args = append(args, k, fields[k])
	}

	cmd := s.b().Arbitrary(db.OpXAdd).Keys(key).Args(args...).Build()
	id, err := s.do(ctx, cmd).ToString()
	if err != nil {
		return "", &db.Error{Op: db.OpXAdd, Err: err}
	}
	return id, nil
}
