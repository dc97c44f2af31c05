package engine

import (
	"fmt"
	"strconv"
	"strings"
)

// Request is one search order for the engine process.
type Request struct {
	FEN           string
	Depth         int
	TimeoutMillis int
}

// Response carries whatever the engine reported for a single search.
// BestMove is empty when the engine returned no move.
type Response struct {
	BestMove   string
	Depth      int
	Eval       int
	Nodes      int64
	TimeMillis int64
	TTHits     int64
	TTStores   int64
}

// EncodeRequest renders the request line. The format is a compatibility
// boundary and must stay exactly "<FEN> | <depth> | <timeoutMillis>\n".
func EncodeRequest(req Request) string {
	return fmt.Sprintf("%s | %d | %d\n", req.FEN, req.Depth, req.TimeoutMillis)
}

// ParseResponse reads a whitespace-delimited key/value line such as
//
//	bestmove e7e5 depth 13 eval -20 nodes 5000000 time 2816
//
// Keys may be missing, reordered, duplicated or unknown. Numeric fields
// default to 0 when absent or unparseable; a missing bestmove stays empty.
func ParseResponse(line string) Response {
	fields := tokenize(line)
	return Response{
		BestMove:   fields.str("bestmove"),
		Depth:      fields.asInt("depth"),
		Eval:       fields.asInt("eval"),
		Nodes:      fields.asInt64("nodes"),
		TimeMillis: fields.asInt64("time"),
		TTHits:     fields.asInt64("tt_hits"),
		TTStores:   fields.asInt64("tt_stores"),
	}
}

var responseKeys = map[string]struct{}{
	"bestmove":  {},
	"depth":     {},
	"eval":      {},
	"nodes":     {},
	"time":      {},
	"tt_hits":   {},
	"tt_stores": {},
}

type responseFields map[string]string

// tokenize pairs each recognized key with the token following it. Later
// duplicates win; unknown tokens are skipped.
func tokenize(line string) responseFields {
	parts := strings.Fields(line)
	fields := make(responseFields, len(responseKeys))
	for i := 0; i < len(parts); {
		if _, ok := responseKeys[parts[i]]; ok && i+1 < len(parts) {
			fields[parts[i]] = parts[i+1]
			i += 2
			continue
		}
		i++
	}
	return fields
}

func (f responseFields) str(key string) string {
	return f[key]
}

func (f responseFields) asInt(key string) int {
	v, err := strconv.Atoi(f[key])
	if err != nil {
		return 0
	}
	return v
}

func (f responseFields) asInt64(key string) int64 {
	v, err := strconv.ParseInt(f[key], 10, 64)
	if err != nil {
		return 0
	}
	return v
}
