// Package textnorm cleans and canonicalises free text and derives simple
// per-text features. Every function is total: any input yields a string.
package textnorm

import (
	"regexp"
	"strings"
)

var (
	reURL         = regexp.MustCompile(`(?i)(https?://\S+|www\.\S+)`)
	reEmail       = regexp.MustCompile(`\S+@\S+`)
	reDecorative  = regexp.MustCompile(`[*~^=_|<>•·«»]+|\.{2,}|-{2,}`)
	reSpace       = regexp.MustCompile(`\s+`)
	reHTMLTag     = regexp.MustCompile(`<[^>]+>`)
	reHTMLEntity  = regexp.MustCompile(`&[a-z0-9#]+;`)
	reURLWord     = regexp.MustCompile(`\burl\b`)
	reMention     = regexp.MustCompile(`@\S+`)
	reHashtag     = regexp.MustCompile(`#(\S+)`)
	reRetweet     = regexp.MustCompile(`\brt\b`)
	reEllipsis    = regexp.MustCompile(`\.{2,}`)
	reDigitRun    = regexp.MustCompile(`\b\d+\b`)
	reDigits      = regexp.MustCompile(`\d+`)
	rePunctuation = regexp.MustCompile(`[^\p{L}\p{N}_\s]`)
	reSpecial     = regexp.MustCompile(`[^a-zA-Z0-9\s]`)
)

// Sentinel tokens produced by social cleaning.
const (
	UserMention = "USER_MENTION"
	EmoPos      = "EMO_POS"
	EmoNeg      = "EMO_NEG"
)

// CollapseSpace trims s and folds whitespace runs into single spaces.
func CollapseSpace(s string) string {
	return strings.TrimSpace(reSpace.ReplaceAllString(s, " "))
}

// Clean is the generic cleaner: lowercase, drop URLs, e-mail addresses and
// decorative punctuation, collapse whitespace.
func Clean(s string) string {
	return CollapseSpace(stripNoise(strings.ToLower(s)))
}

// stripNoise blanks URLs, e-mail addresses and decorative punctuation.
func stripNoise(s string) string {
	s = reURL.ReplaceAllString(s, " ")
	s = reEmail.ReplaceAllString(s, " ")
	return reDecorative.ReplaceAllString(s, " ")
}

// CleanSocial cleans posts, tweets and comments. Mentions become
// USER_MENTION, hashtags keep their word, known emoji map to EMO_POS or
// EMO_NEG and standalone numbers are removed.
func CleanSocial(s string) string {
	s = strings.ToLower(s)
	s = reHTMLTag.ReplaceAllString(s, " ")
	s = reHTMLEntity.ReplaceAllString(s, " ")
	s = reURL.ReplaceAllString(s, " ")
	s = reURLWord.ReplaceAllString(s, " ")
	s = reMention.ReplaceAllString(s, UserMention)
	s = reHashtag.ReplaceAllString(s, " $1 ")
	s = reRetweet.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, "^", " ")
	s = reEllipsis.ReplaceAllString(s, " ")
	s = strings.Trim(s, " \"'")
	s = replaceEmoji(s)
	s = reDigitRun.ReplaceAllString(s, " ")
	return CollapseSpace(s)
}

var positiveEmoji = []string{
	"😀", "😃", "😄", "😁", "😆", "😊", "😍", "🥰", "😘", "😗", "😙", "😚",
	"🙂", "🤗", "🤩", "🤠", "😎", "👍", "👏", "🎉", "❤️", "❤", "💕", "💖", "💗",
	"💙", "💚", "💛", "🧡", "💜", "🖤", "💯", "✨", "⭐", "🌟",
}

var negativeEmoji = []string{
	"😞", "😔", "😟", "😕", "🙁", "😣", "😖", "😫", "😩", "😢", "😭", "😤",
	"😠", "😡", "🤬", "😱", "😨", "😰", "😥", "😓", "💔", "👎", "😒", "🙄",
}

var emojiReplacer = func() *strings.Replacer {
	var pairs []string
	for _, e := range positiveEmoji {
		pairs = append(pairs, e, " "+EmoPos+" ")
	}
	for _, e := range negativeEmoji {
		pairs = append(pairs, e, " "+EmoNeg+" ")
	}
	return strings.NewReplacer(pairs...)
}()

func replaceEmoji(s string) string { return emojiReplacer.Replace(s) }
