package alpha

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/claude/overload/internal/models"
)

var (
	// sessionHeaderRe matches: "Session Name";"2026-02-19 4:54 h";"1:02 hr"
	sessionHeaderRe = regexp.MustCompile(`^"(.+)";"(\d{4}-\d{2}-\d{2}\s+\d+:\d+)\s+h";"(.+)"$`)

	// exerciseHeaderRe matches: "1. Exercise Name · Equipment · 8 reps[· modifiers]"[;"warmup info"]
	exerciseHeaderRe = regexp.MustCompile(`^"(\d+)\.\s+(.+?)(?:\s+·\s+(\S.*?))?\s+·\s+(\d+)\s+reps(.*?)"(?:;"(.+)")?$`)

	// setDataRe matches: 1;115;8;1
	setDataRe = regexp.MustCompile(`^(\d+);(.+);(\d+);(.+)$`)

	// warmupRe matches: WU1 · 37,5 kg · 9 reps
	warmupRe = regexp.MustCompile(`WU(\d+)\s+·\s+(.+?)\s+kg\s+·\s+(\d+)\s+reps`)

	// durationRe matches: 1:02 hr
	durationRe = regexp.MustCompile(`^(\d+):(\d{2})\s*hr?$`)

	// minutesRe matches: 45 min
	minutesRe = regexp.MustCompile(`^(\d+)\s*min$`)
)

const columnHeader = "#;KG;REPS;RIR"

// parser accumulates sessions line by line. A blank line or a new session
// header closes the current session.
type parser struct {
	sessions []models.AlphaSession
	session  *models.AlphaSession
	exercise *models.AlphaExercise
}

// Parse reads an Alpha Progression CSV export and returns parsed sessions.
// Warmups become warmup sets; data rows become completed working sets whose
// actual reps and weight are the logged values.
func Parse(r io.Reader) ([]models.AlphaSession, error) {
	p := &parser{}
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if err := p.line(strings.TrimSpace(scanner.Text())); err != nil {
			return nil, err
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	p.closeSession()
	return p.sessions, nil
}

func (p *parser) line(line string) error {
	switch {
	case line == "":
		p.closeSession()
	case line == columnHeader:
	case sessionHeaderRe.MatchString(line):
		return p.startSession(sessionHeaderRe.FindStringSubmatch(line))
	case exerciseHeaderRe.MatchString(line):
		return p.startExercise(line, exerciseHeaderRe.FindStringSubmatch(line))
	case setDataRe.MatchString(line):
		return p.addSet(line, setDataRe.FindStringSubmatch(line))
	}
	// Anything else is notes or metadata.
	return nil
}

func (p *parser) startSession(m []string) error {
	p.closeSession()
	date, err := parseSessionDate(m[2])
	if err != nil {
		return fmt.Errorf("parsing session date %q: %w", m[2], err)
	}
	p.session = &models.AlphaSession{
		Name:     m[1],
		Date:     date,
		Duration: parseDuration(m[3]),
	}
	return nil
}

func (p *parser) startExercise(line string, m []string) error {
	if p.session == nil {
		return fmt.Errorf("exercise without session: %q", line)
	}
	p.closeExercise()
	num, _ := strconv.Atoi(m[1])
	targetReps, _ := strconv.Atoi(m[4])
	p.exercise = &models.AlphaExercise{
		Number:     num,
		Name:       strings.TrimSpace(m[2]),
		Equipment:  strings.TrimSpace(m[3]),
		TargetReps: targetReps,
	}
	if m[6] != "" {
		p.exercise.Sets = append(p.exercise.Sets, parseWarmups(m[6])...)
	}
	return nil
}

func (p *parser) addSet(line string, m []string) error {
	if p.exercise == nil {
		return fmt.Errorf("set data without exercise: %q", line)
	}
	weight, _ := parseWeight(m[2])
	reps, _ := strconv.Atoi(m[3])
	p.exercise.Sets = append(p.exercise.Sets, models.SetTarget{
		TargetReps:   p.exercise.TargetReps,
		TargetWeight: weight,
		Status:       models.SetCompleted,
		ActualReps:   &reps,
		ActualWeight: &weight,
	})
	return nil
}

func (p *parser) closeExercise() {
	if p.session != nil && p.exercise != nil {
		p.session.Exercises = append(p.session.Exercises, *p.exercise)
	}
	p.exercise = nil
}

func (p *parser) closeSession() {
	p.closeExercise()
	if p.session != nil {
		p.sessions = append(p.sessions, *p.session)
	}
	p.session = nil
}

// parseSessionDate parses "2026-02-19 4:54" into a time.Time.
func parseSessionDate(s string) (time.Time, error) {
	for _, layout := range []string{"2006-01-02 15:04", "2006-01-02 3:04"} {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse date %q", s)
}

// parseDuration understands "1:02 hr" and "45 min"; anything else is zero.
func parseDuration(s string) time.Duration {
	s = strings.TrimSpace(s)
	if m := durationRe.FindStringSubmatch(s); m != nil {
		h, _ := strconv.Atoi(m[1])
		mins, _ := strconv.Atoi(m[2])
		return time.Duration(h)*time.Hour + time.Duration(mins)*time.Minute
	}
	if m := minutesRe.FindStringSubmatch(s); m != nil {
		mins, _ := strconv.Atoi(m[1])
		return time.Duration(mins) * time.Minute
	}
	return 0
}

// parseWarmups extracts warmup sets from the warmup info string.
// Example: "WU1 · 37,5 kg · 9 reps<br>WU2 · 72,5 kg · 7 reps"
func parseWarmups(s string) []models.SetTarget {
	var sets []models.SetTarget
	for _, part := range strings.Split(s, "<br>") {
		m := warmupRe.FindStringSubmatch(part)
		if m == nil {
			continue
		}
		weight, _ := parseWeight(m[2])
		reps, _ := strconv.Atoi(m[3])
		sets = append(sets, models.SetTarget{
			TargetReps:   reps,
			TargetWeight: weight,
			Status:       models.SetWarmup,
			ActualReps:   &reps,
			ActualWeight: &weight,
			IsWarmup:     true,
		})
	}
	return sets
}

// parseWeight handles European decimals and bodyweight-plus notation.
// "+35" -> (35, true), "102,5" -> (102.5, false), "+0" -> (0, true)
func parseWeight(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if rest, ok := strings.CutPrefix(s, "+"); ok {
		return parseEuropeanFloat(rest), true
	}
	return parseEuropeanFloat(s), false
}

// parseEuropeanFloat converts a European decimal string to float64.
// "102,5" -> 102.5, "0,5" -> 0.5
func parseEuropeanFloat(s string) float64 {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	f, _ := strconv.ParseFloat(s, 64)
	return f
}
