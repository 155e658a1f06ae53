package emotion

import (
	"math"
	"sort"
	"strings"
	"unicode"
)

// Label 表示情绪词表中的一个标签。
type Label string

const (
	Neutral  Label = "neutral"
	Happy    Label = "Happy"
	Angry    Label = "Angry"
	Surprise Label = "Surprise"
	Sad      Label = "Sad"
	Fear     Label = "Fear"
)

// Scores 将情绪标签映射到强度分数，空表示没有识别到情绪。
type Scores map[Label]float64

// Labels 返回分类器使用的固定词表。
func Labels() []Label {
	return []Label{Happy, Angry, Surprise, Sad, Fear}
}

var keywordBuckets = map[Label][]string{
	Happy: {
		"happy", "happier", "happiest", "happiness", "glad", "joy", "joyful", "cheerful", "delighted",
		"pleased", "grateful", "thankful", "love", "loved", "lovely", "wonderful", "awesome", "amazing",
		"smile", "smiling", "laugh", "laughing", "fun", "hopeful", "proud", "relieved", "peaceful",
		"blessed", "enjoy", "enjoyed", "celebrate", "fantastic", "thrilled", "excited", "content",
	},
	Angry: {
		"angry", "anger", "mad", "furious", "annoyed", "annoying", "irritated", "irritating", "frustrated",
		"frustrating", "hate", "hated", "rage", "outraged", "resent", "resentful", "bitter", "hostile",
		"livid", "pissed", "infuriated", "disgusted", "offended", "yell", "yelled", "unfair",
	},
	Surprise: {
		"surprised", "surprise", "surprising", "shocked", "shock", "shocking", "amazed", "astonished",
		"unexpected", "unexpectedly", "suddenly", "stunned", "startled", "speechless", "unbelievable",
		"wow", "whoa", "astounded", "incredible",
	},
	Sad: {
		"sad", "sadness", "unhappy", "depressed", "depression", "hopeless", "lonely", "alone", "miserable",
		"cry", "crying", "cried", "tears", "grief", "grieving", "heartbroken", "hurt", "pain", "empty",
		"gloomy", "sorrow", "lost", "loss", "upset", "disappointed", "worthless", "numb", "broken",
		"regret", "down",
	},
	Fear: {
		"afraid", "scared", "fear", "fearful", "anxious", "anxiety", "worried", "worry", "worrying",
		"nervous", "panic", "terrified", "frightened", "dread", "uneasy", "insecure", "overwhelmed",
		"stress", "stressed", "tense", "threatened", "horror", "paranoid", "unsafe",
	},
}

var lexicon = buildLexicon()

func buildLexicon() map[string]Label {
	index := make(map[string]Label)
	for label, words := range keywordBuckets {
		for _, word := range words {
			index[word] = label
		}
	}
	return index
}

// Analyze 统计输入文本中命中的情绪词，返回每个标签占命中总数的比例（保留两位小数）。
// 没有命中任何情绪词时返回空映射。
func Analyze(text string) Scores {
	counts := make(map[Label]int)
	total := 0
	for _, token := range tokenize(text) {
		label, ok := lookup(token)
		if !ok {
			continue
		}
		counts[label]++
		total++
	}

	scores := make(Scores, len(counts))
	if total == 0 {
		return scores
	}
	for label, count := range counts {
		scores[label] = math.Round(float64(count)/float64(total)*100) / 100
	}
	return scores
}

// Dominant 选出分数最高的标签；空映射返回 Neutral。
// 分数相同时取字典序最小的标签，保证结果稳定。
func Dominant(scores Scores) Label {
	if len(scores) == 0 {
		return Neutral
	}

	labels := make([]Label, 0, len(scores))
	for label := range scores {
		labels = append(labels, label)
	}
	sort.Slice(labels, func(i, j int) bool { return labels[i] < labels[j] })

	best := labels[0]
	for _, label := range labels[1:] {
		if scores[label] > scores[best] {
			best = label
		}
	}
	return best
}

// ParseLabel 不区分大小写地解析词表中的标签。
func ParseLabel(raw string) (Label, bool) {
	normalized := strings.TrimSpace(raw)
	for _, label := range Labels() {
		if strings.EqualFold(normalized, string(label)) {
			return label, true
		}
	}
	return "", false
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && r != '\''
	})
}

func lookup(token string) (Label, bool) {
	token = strings.Trim(token, "'")
	token = strings.TrimSuffix(token, "'s")
	if label, ok := lexicon[token]; ok {
		return label, true
	}
	for _, suffix := range []string{"ness", "ly", "s"} {
		stem := strings.TrimSuffix(token, suffix)
		if stem == token || len(stem) < 3 {
			continue
		}
		if label, ok := lexicon[stem]; ok {
			return label, true
		}
	}
	return "", false
}
