package citizens

import (
	"strings"

	"github.com/soratane/aicity/internal/rng"
)

// Conversation is a finished exchange between two co-located citizens,
// surfaced in snapshots for the live client.
type Conversation struct {
	Location     string    `json:"location"`
	Participants []string  `json:"participants"`
	Messages     []Message `json:"messages"`
}

// Message is one line of a conversation.
type Message struct {
	Speaker string `json:"speaker"`
	Text    string `json:"text"`
}

// Topic strings carry {name} / {name2} placeholders filled with the
// names of uninvolved citizens.
var convTopics = map[string][]string{
	"politics": {
		"What do you make of politics these days?",
		"Did you hear about the new bill?",
		"Don't you think taxes are too high?",
		"Do you back the prime minister's policy?",
		"Who will you vote for next election?",
		"We need more investment in education.",
		"The city feels safer lately, doesn't it?",
	},
	"economy": {
		"Prices have really gone up lately.",
		"Vegetables are expensive today.",
		"The economy seems to be picking up.",
		"Prices climb but wages never do...",
		"Apparently a new shop just opened.",
		"How is business treating you?",
		"I really need to cut back on spending.",
	},
	"daily": {
		"Lovely weather today!",
		"Busy day so far?",
		"How have you been feeling lately?",
		"What did you have for lunch?",
		"Any plans for the weekend?",
		"Sleeping well these days?",
		"Perfect season for a walk, isn't it?",
	},
	"gossip": {
		"Have you heard? Something about {name}...",
		"{name} seems down lately.",
		"{name} and {name2} look awfully close, don't they?",
		"I hear someone is changing jobs.",
		"Is it true {name} next door is moving away?",
		"Word is {name} got a promotion.",
		"I spotted {name} at the hospital.",
	},
	"family": {
		"Children grow up so fast.",
		"My kid is at that difficult age...",
		"We should take a family trip somewhere.",
		"Caring for aging parents is hard work.",
		"How is your spouse doing?",
		"Family health comes first, always.",
		"School fees are no joke these days.",
	},
}

var convResponses = map[string][]string{
	"agree": {
		"Exactly!",
		"I really do think so.",
		"I was feeling the same way.",
		"You said it.",
		"Couldn't agree more.",
	},
	"disagree": {
		"Hmm, I'm not so sure...",
		"I see it a little differently.",
		"Do you really think so?",
		"There's another way to look at it.",
	},
	"neutral": {
		"Is that so.",
		"That's one way to see it.",
		"Interesting.",
		"First I've heard of it.",
		"Huh, I hadn't thought about that.",
	},
}

var topicKeys = []string{"politics", "economy", "daily", "gossip", "family"}
var responseKeys = []string{"agree", "disagree", "neutral"}
var followupKeys = []string{"daily", "economy", "politics"}

// fillNames substitutes gossip placeholders with random other names.
func fillNames(template string, others []string, r *rng.Provider) string {
	out := template
	if strings.Contains(out, "{name}") && len(others) > 0 {
		out = strings.Replace(out, "{name}", rng.Pick(r, others), 1)
	}
	if strings.Contains(out, "{name2}") && len(others) > 0 {
		out = strings.Replace(out, "{name2}", rng.Pick(r, others), 1)
	}
	return out
}
