package tabular

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"os"
	"strings"
)

var delimiterCandidates = []rune{',', ';', '\t', '|'}

// detectDelimiter sniffs the delimiter from up to five non-empty sample
// lines: the candidate with the highest, consistent count across lines wins.
// Falls back to a comma when nothing stands out.
func detectDelimiter(sample []string) rune {
	if len(sample) == 0 {
		return ','
	}
	best := ','
	bestCount := 0
	for _, cand := range delimiterCandidates {
		count := strings.Count(sample[0], string(cand))
		if count == 0 {
			continue
		}
		consistent := true
		for _, line := range sample[1:] {
			if strings.Count(line, string(cand)) != count {
				consistent = false
				break
			}
		}
		if consistent && count > bestCount {
			best = cand
			bestCount = count
		}
	}
	if bestCount > 0 {
		return best
	}
	// No consistent candidate; take the most frequent one on the first line.
	for _, cand := range delimiterCandidates {
		if count := strings.Count(sample[0], string(cand)); count > bestCount {
			best = cand
			bestCount = count
		}
	}
	if bestCount == 0 {
		return ','
	}
	return best
}

func sampleLines(path string, max int) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %v", err)
	}
	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
		if len(lines) >= max {
			break
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading file: %v", err)
	}
	return lines, nil
}

// readCSV reads a whole CSV file, sniffing its delimiter first.
func readCSV(path string) ([][]string, error) {
	sample, err := sampleLines(path, 5)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %v", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.Comma = detectDelimiter(sample)
	reader.TrimLeadingSpace = true
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse CSV: %v", err)
	}
	return rows, nil
}

// writeCSV writes rows with the given separator.
func writeCSV(path string, rows [][]string, separator rune) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %v", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if separator != 0 {
		writer.Comma = separator
	}
	for i, row := range rows {
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write row %d: %v", i+1, err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV: %v", err)
	}
	return nil
}
