package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const header = "# IANA time zone identifiers (canonical zones from zone.tab plus UTC)."

func main() {
	zoneTab := flag.String("zonetab", "/usr/share/zoneinfo/zone.tab", "path to the tzdata zone.tab file")
	out := flag.String("out", "components/timezones/data/iana_timezones.txt", "output list path")
	flag.Parse()

	zones, err := readZoneTab(*zoneTab)
	if err != nil {
		fmt.Fprintf(os.Stderr, "generate-timezones: %v\n", err)
		os.Exit(1)
	}
	if err := writeList(*out, zones); err != nil {
		fmt.Fprintf(os.Stderr, "generate-timezones: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("wrote %d zones to %s\n", len(zones), *out)
}

// readZoneTab returns the sorted, unique zone names in the third column of
// zone.tab, plus UTC.
func readZoneTab(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	seen := map[string]struct{}{"UTC": {}}
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		cols := strings.Split(line, "\t")
		if len(cols) < 3 {
			continue
		}
		seen[strings.TrimSpace(cols[2])] = struct{}{}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan %s: %w", path, err)
	}

	zones := make([]string, 0, len(seen))
	for zone := range seen {
		zones = append(zones, zone)
	}
	sort.Strings(zones)
	return zones, nil
}

func writeList(path string, zones []string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	var b strings.Builder
	b.WriteString(header)
	b.WriteString("\n")
	for _, zone := range zones {
		b.WriteString(zone)
		b.WriteString("\n")
	}
	return os.WriteFile(path, []byte(b.String()), 0o644)
}
