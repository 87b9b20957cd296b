package genecall

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
)

var validate = validator.New()

// matcherResult mirrors the named allele matcher's JSON output.
type matcherResult struct {
	Results []*Call `json:"results"`
}

// LoadMatcherCalls loads calls from a named allele matcher JSON file.
func LoadMatcherCalls(path string) ([]*Call, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open matcher calls: %w", err)
	}
	defer f.Close()

	return ParseMatcherCalls(f)
}

// ParseMatcherCalls decodes matcher JSON. The document is either an object
// with a "results" array or a bare array of calls.
func ParseMatcherCalls(r io.Reader) ([]*Call, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read matcher calls: %w", err)
	}

	var calls []*Call
	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, "[") {
		if err := json.Unmarshal(data, &calls); err != nil {
			return nil, fmt.Errorf("decode matcher calls: %w", err)
		}
	} else {
		var res matcherResult
		if err := json.Unmarshal(data, &res); err != nil {
			return nil, fmt.Errorf("decode matcher calls: %w", err)
		}
		calls = res.Results
	}

	for i, c := range calls {
		if c == nil {
			return nil, fmt.Errorf("matcher call %d: empty record", i)
		}
		if err := validate.Struct(c); err != nil {
			return nil, fmt.Errorf("matcher call %d: %w", i, err)
		}
		c.Source = SourceMatcher
	}
	return calls, nil
}

// LoadAstrolabeCalls loads overlay caller calls from a TSV file.
func LoadAstrolabeCalls(path string) ([]*Call, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open astrolabe calls: %w", err)
	}
	defer f.Close()

	return ParseAstrolabeCalls(f)
}

// ParseAstrolabeCalls parses lines of the form "GENE<TAB>dip1,dip2".
// Lines starting with '#' and blank lines are skipped. A gene with an
// empty diplotype column yields a call with no diplotypes.
func ParseAstrolabeCalls(r io.Reader) ([]*Call, error) {
	var calls []*Call
	scanner := bufio.NewScanner(r)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Split(line, "\t")
		c := &Call{
			Gene:   strings.TrimSpace(fields[0]),
			Source: SourceAstrolabe,
		}
		if len(fields) > 1 {
			for _, d := range strings.Split(fields[1], ",") {
				if d = strings.TrimSpace(d); d != "" {
					c.Diplotypes = append(c.Diplotypes, d)
				}
			}
		}
		if err := validate.Struct(c); err != nil {
			return nil, fmt.Errorf("astrolabe line %d: %w", lineNum, err)
		}
		calls = append(calls, c)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading astrolabe calls: %w", err)
	}
	return calls, nil
}
