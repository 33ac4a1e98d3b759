// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package draft

import (
	"bytes"
	"strings"
	"text/template"

	"github.com/pdiddy/reviewer-outreach/pkg/types"
)

// systemMessage fixes the voice of every drafted message.
const systemMessage = `You are a professional academic peer. You write with brevity, confidence, and zero fluff. You do not use "AI-isms" like "I hope this finds you well" or "I am writing to."

Your messages are professional but approachable, personalised to the venue's topics and the researcher's expertise, and focused on genuine fit rather than flattery.`

// userPromptTmpl is rendered once per venue.
var userPromptTmpl = template.Must(template.New("reviewer").Parse(`Write a direct proposal to the {{.VenueName}} organizers to serve as a reviewer.

CONFERENCE DETAILS:
- Name: {{.VenueName}}
- Key Topics: {{.Topics}}
- Conference Highlights: {{.Highlights}}

USER CONTEXT:
- My Identity: {{.Name}}{{if .Affiliation}}, {{.Affiliation}}{{end}}.{{if .Identity}} {{.Identity}}{{end}}
- Relevant Proof: {{.Publications}}
- My Expertise: {{.Expertise}}

CONSTRAINTS:
1. MATCHING: Identify exactly 2 intersections between the venue's topics ({{.Topics}}) and my expertise ({{.Expertise}}). If there is no genuine intersection, reply with the single word NULL and nothing else.
2. TONE: Write as a peer offering a service, not a student asking for a spot.
3. LENGTH: Between {{.MinWords}} and {{.MaxWords}} words.
4. STRUCTURE:
   - Sentence 1: Direct statement of intent.
   - Sentence 2-3: Evidence of specific expertise matching their track.
   - Sentence 4: The value I provide (e.g., "I can provide rigorous reviews for papers involving [Topic]").
5. NO SIGN-OFF: End the text immediately after the last content sentence. Do NOT include "Sincerely," "Thank you," or your name.

NEGATIVE CONSTRAINTS:
- DO NOT use the phrase "I hope this message finds you well."
- DO NOT list full paper titles in quotes; describe the contribution instead.
- DO NOT use the word "passionate" or "keen."

Email Body:`))

type promptData struct {
	VenueName    string
	Topics       string
	Highlights   string
	Name         string
	Affiliation  string
	Identity     string
	Publications string
	Expertise    string
	MinWords     int
	MaxWords     int
}

// renderPrompt builds the user prompt for one venue.
func renderPrompt(rec types.ResearchedRecord, p types.UserProfile, cfg types.GenerationConfig) (string, error) {
	topics := strings.Join(rec.Topics, ", ")
	if topics == "" {
		topics = "not available"
	}
	highlights := rec.Highlights
	if highlights == "" {
		highlights = "not available"
	}

	data := promptData{
		VenueName:    rec.Name,
		Topics:       topics,
		Highlights:   highlights,
		Name:         p.Name,
		Affiliation:  p.Affiliation,
		Identity:     p.Identity,
		Publications: strings.Join(p.Publications, " "),
		Expertise:    p.ExpertiseSummary(),
		MinWords:     cfg.MinWords,
		MaxWords:     cfg.MaxWords,
	}

	var buf bytes.Buffer
	if err := userPromptTmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
