// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"sort"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"

	"github.com/pdiddy/rhino-harvest/pkg/types"
)

// codeBlock is one candidate found in a post.
type codeBlock struct {
	code string
	hint string // language from markup, or ""
}

// ForumExtractor extracts code blocks from the cooked HTML of forum posts.
type ForumExtractor struct {
	cfg       types.ExtractionConfig
	keywords  keywordSet
	converter *md.Converter
}

// NewForumExtractor returns a forum extractor. Keywords default to
// DefaultKeywords when cfg.Keywords is empty.
func NewForumExtractor(cfg types.ExtractionConfig) *ForumExtractor {
	words := cfg.Keywords
	if len(words) == 0 {
		words = DefaultKeywords
	}
	return &ForumExtractor{
		cfg:       cfg,
		keywords:  newKeywordSet(words),
		converter: md.NewConverter("", true, nil),
	}
}

// Extract returns one record per qualifying code block, in post order. The
// first post's text becomes the instruction of every record. Identical
// blocks in the same thread are all kept.
func (x *ForumExtractor) Extract(res types.FetchResult) []types.ExtractedRecord {
	if len(res.Posts) == 0 {
		return nil
	}
	posts := append([]types.Post(nil), res.Posts...)
	sort.SliceStable(posts, func(i, j int) bool { return posts[i].Number < posts[j].Number })

	title := res.Title
	if title == "" {
		title = res.Item.Title
	}
	url := res.URL
	if url == "" {
		url = res.Item.URL
	}
	question := truncate(x.questionText(posts[0].Cooked), x.cfg.MaxQuestionChars)

	type kept struct {
		block codeBlock
		post  types.Post
	}
	var blocks []kept
	for _, p := range posts {
		for _, b := range x.codeBlocks(p.Cooked) {
			if lineCount(b.code) < x.cfg.MinCodeLines {
				continue
			}
			if !x.keywords.matches(b.code) {
				continue
			}
			blocks = append(blocks, kept{block: b, post: p})
		}
	}
	if len(blocks) == 0 {
		return nil
	}

	parts := []string{title, question}
	for _, k := range blocks {
		parts = append(parts, k.block.code)
	}
	tags := mergeTags(InferTags(parts...), res.Item.Tags)

	records := make([]types.ExtractedRecord, 0, len(blocks))
	for i, k := range blocks {
		lang := k.block.hint
		if lang == "" {
			lang = DetectLanguage(k.block.code)
		}
		records = append(records, types.ExtractedRecord{
			ID:          recordID(res.Item.ID, i+1),
			WorkItemID:  res.Item.ID,
			Source:      types.SourceForum,
			SourceURL:   url,
			Title:       title,
			Instruction: question,
			Code:        k.block.code,
			Language:    lang,
			Author:      k.post.Username,
			Tags:        tags,
			PostNumber:  k.post.Number,
			IsSolution:  k.post.Accepted,
		})
	}
	return records
}

// codeBlocks returns the <pre> blocks of a post, preferring the inner
// <code> text, followed by multi-line <code> elements outside <pre>.
func (x *ForumExtractor) codeBlocks(html string) []codeBlock {
	if strings.TrimSpace(html) == "" {
		return nil
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}

	var blocks []codeBlock
	doc.Find("pre").Each(func(_ int, pre *goquery.Selection) {
		var text, class string
		if code := pre.Find("code").First(); code.Length() > 0 {
			text = code.Text()
			class, _ = code.Attr("class")
		} else {
			text = pre.Text()
			class, _ = pre.Attr("class")
		}
		if text = trimBlankLines(text); text != "" {
			blocks = append(blocks, codeBlock{code: text, hint: LanguageFromClass(class)})
		}
	})

	doc.Find("code").Each(func(_ int, code *goquery.Selection) {
		if code.ParentsFiltered("pre").Length() > 0 {
			return
		}
		text := trimBlankLines(code.Text())
		if strings.Contains(text, "\n") {
			class, _ := code.Attr("class")
			blocks = append(blocks, codeBlock{code: text, hint: LanguageFromClass(class)})
		}
	})
	return blocks
}

// questionText renders the first post as Markdown, falling back to plain
// text when conversion fails.
func (x *ForumExtractor) questionText(html string) string {
	if strings.TrimSpace(html) == "" {
		return ""
	}
	text, err := x.converter.ConvertString(html)
	if err != nil {
		doc, derr := goquery.NewDocumentFromReader(strings.NewReader(html))
		if derr != nil {
			return ""
		}
		text = doc.Text()
	}
	return strings.TrimSpace(text)
}
