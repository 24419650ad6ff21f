// groundtrack prints a satellite's current position, ground track, and
// upcoming passes over an observer, fetching the TLE from CelesTrak or
// reading it from a file.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/salcedoinaki/stellar/internal/orbital/geodesy"
	"github.com/salcedoinaki/stellar/internal/orbital/observation"
	"github.com/salcedoinaki/stellar/internal/orbital/passes"
	"github.com/salcedoinaki/stellar/internal/orbital/sgp4"
	"github.com/salcedoinaki/stellar/internal/orbital/tle"
	"github.com/salcedoinaki/stellar/internal/orbital/trajectory"
	"github.com/salcedoinaki/stellar/internal/platform/tlesource"
)

func main() {
	noradID := flag.Int("norad", tlesource.NoradISS, "NORAD catalog ID (default: ISS 25544)")
	tleFile := flag.String("tle-file", "", "read the TLE from a file instead of CelesTrak")
	obsLat := flag.Float64("lat", 40.7128, "Observer latitude (default: NYC)")
	obsLon := flag.Float64("lon", -74.0060, "Observer longitude")
	obsAlt := flag.Float64("alt", 10, "Observer altitude in meters")
	minElev := flag.Float64("min-elevation", 5, "Minimum pass elevation in degrees")
	duration := flag.Int("duration", 90, "Ground track duration in minutes")
	stepSec := flag.Int("step", 60, "Ground track step in seconds")
	passHours := flag.Int("pass-hours", 24, "Pass prediction window in hours")
	outputJSON := flag.Bool("json", false, "Output as JSON")
	flag.Parse()

	log.SetFlags(log.Ltime)
	ctx := context.Background()

	name, elements, err := loadTLE(ctx, *noradID, *tleFile)
	if err != nil {
		log.Fatalf("Failed to load TLE: %v", err)
	}

	log.Printf("Satellite: %s (NORAD %d)", name, elements.NoradID)
	log.Printf("TLE Line 1: %s", elements.Line1)
	log.Printf("TLE Line 2: %s", elements.Line2)
	log.Printf("Epoch: %s", elements.Epoch.Format(time.RFC3339))
	fmt.Println()

	model, err := sgp4.NewModel(elements)
	if err != nil {
		log.Fatalf("Failed to initialize propagator: %v", err)
	}

	now := time.Now().UTC().Truncate(time.Second)
	state, err := model.PropagateAt(now)
	if err != nil {
		log.Fatalf("Propagation failed: %v", err)
	}
	geo := geodesy.FromECI(state.Position, now)

	log.Printf("Current Position:")
	log.Printf("  Latitude:  %.4f°", geo.LatitudeDeg)
	log.Printf("  Longitude: %.4f°", geo.LongitudeDeg)
	log.Printf("  Altitude:  %.2f km", geo.AltitudeKm)
	log.Printf("  Speed:     %.3f km/s", state.Velocity.Norm())
	fmt.Println()

	end := now.Add(time.Duration(*duration) * time.Minute)
	samples, skipped, err := trajectory.Sweep(model, now, end, time.Duration(*stepSec)*time.Second)
	if err != nil {
		log.Fatalf("Ground track failed: %v", err)
	}
	if skipped > 0 {
		log.Printf("Warning: %d samples diverged and were skipped", skipped)
	}

	station := observation.GroundStation{
		ID:              "observer",
		Name:            "Observer",
		LatitudeDeg:     *obsLat,
		LongitudeDeg:    *obsLon,
		AltitudeM:       *obsAlt,
		MinElevationDeg: *minElev,
	}
	finder := passes.Finder{Refine: true}
	upcoming := finder.Find(model, station, now, now.Add(time.Duration(*passHours)*time.Hour))

	if *outputJSON {
		printJSON(name, elements, samples, upcoming)
		return
	}

	log.Printf("Ground Track (every 10 samples):")
	for i, s := range samples {
		if i%10 == 0 {
			log.Printf("  %s: Lat %7.2f°, Lon %8.2f°, Alt %6.0f km",
				s.Time.Format("15:04:05"), s.Geo.LatitudeDeg, s.Geo.LongitudeDeg, s.Geo.AltitudeKm)
		}
	}
	fmt.Println()

	if len(upcoming) == 0 {
		log.Printf("No passes above %.0f° in the next %d hours", *minElev, *passHours)
		return
	}
	log.Printf("Upcoming Passes over %.4f°, %.4f°:", *obsLat, *obsLon)
	for i, p := range upcoming {
		log.Printf("  Pass %d:", i+1)
		log.Printf("    AOS: %s (Az %.1f°)", p.AOS.Format("Jan 02 15:04:05"), p.AOSAzimuthDeg)
		log.Printf("    TCA: %s (max El %.1f°)", p.TCA.Format("Jan 02 15:04:05"), p.MaxElevationDeg)
		log.Printf("    LOS: %s (Az %.1f°)", p.LOS.Format("Jan 02 15:04:05"), p.LOSAzimuthDeg)
		log.Printf("    Duration: %s", p.Duration.Round(time.Second))
	}
}

// loadTLE reads a TLE from a file (name line optional) or fetches it.
func loadTLE(ctx context.Context, noradID int, path string) (string, *tle.TLE, error) {
	if path == "" {
		client := tlesource.NewClient(tlesource.DefaultConfig(), nil)
		fetched, err := client.GetTLE(ctx, noradID)
		if err != nil {
			return "", nil, err
		}
		parsed, err := tle.Parse(fetched.Line1, fetched.Line2)
		if err != nil {
			return "", nil, err
		}
		return fetched.Name, parsed, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return "", nil, err
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if line := strings.TrimRight(scanner.Text(), " \r"); line != "" {
			lines = append(lines, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return "", nil, err
	}

	name := fmt.Sprintf("NORAD %d", noradID)
	switch len(lines) {
	case 2:
	case 3:
		name = strings.TrimSpace(lines[0])
		lines = lines[1:]
	default:
		return "", nil, fmt.Errorf("%s: expected 2 or 3 lines, got %d", path, len(lines))
	}

	parsed, err := tle.Parse(lines[0], lines[1])
	if err != nil {
		return "", nil, err
	}
	return name, parsed, nil
}

func printJSON(name string, elements *tle.TLE, samples []trajectory.Sample, upcoming []passes.Pass) {
	type point struct {
		Time time.Time        `json:"time"`
		Geo  geodesy.Geodetic `json:"geodetic"`
	}
	points := make([]point, len(samples))
	for i, s := range samples {
		points[i] = point{Time: s.Time, Geo: s.Geo}
	}

	output := struct {
		Satellite string        `json:"satellite"`
		NoradID   int           `json:"norad_id"`
		Epoch     time.Time     `json:"epoch"`
		Track     []point       `json:"track"`
		Passes    []passes.Pass `json:"passes"`
	}{
		Satellite: name,
		NoradID:   elements.NoradID,
		Epoch:     elements.Epoch,
		Track:     points,
		Passes:    upcoming,
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.Encode(output)
}
