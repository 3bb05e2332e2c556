// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package forum

import (
	"encoding/json"
	"strconv"

	"github.com/pdiddy/rhino-harvest/pkg/types"
)

// Wire types for the Discourse JSON API. Only the fields the harvester
// reads are modelled.

type topicStub struct {
	ID                int     `json:"id"`
	Title             string  `json:"title"`
	Slug              string  `json:"slug"`
	HasAcceptedAnswer bool    `json:"has_accepted_answer"`
	Tags              tagList `json:"tags"`
	CategoryID        int     `json:"category_id"`
}

type searchResponse struct {
	Topics              []topicStub `json:"topics"`
	GroupedSearchResult struct {
		MoreFullPageResults bool `json:"more_full_page_results"`
	} `json:"grouped_search_result"`
}

type categoryResponse struct {
	TopicList struct {
		Topics        []topicStub `json:"topics"`
		MoreTopicsURL string      `json:"more_topics_url"`
	} `json:"topic_list"`
}

type post struct {
	ID             int    `json:"id"`
	PostNumber     int    `json:"post_number"`
	Username       string `json:"username"`
	Cooked         string `json:"cooked"`
	AcceptedAnswer bool   `json:"accepted_answer"`
}

type postStream struct {
	Posts  []post `json:"posts"`
	Stream []int  `json:"stream"`
}

type topicResponse struct {
	ID                int        `json:"id"`
	Title             string     `json:"title"`
	Slug              string     `json:"slug"`
	CategoryID        int        `json:"category_id"`
	Views             int        `json:"views"`
	PostsCount        int        `json:"posts_count"`
	HasAcceptedAnswer bool       `json:"has_accepted_answer"`
	PostStream        postStream `json:"post_stream"`
}

type postsResponse struct {
	PostStream postStream `json:"post_stream"`
}

// tagList accepts tags as plain strings or as {"name": ...} objects; the
// shape depends on the Discourse version.
type tagList []string

func (t *tagList) UnmarshalJSON(data []byte) error {
	var names []string
	if err := json.Unmarshal(data, &names); err == nil {
		*t = names
		return nil
	}
	var objs []struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(data, &objs); err != nil {
		return err
	}
	out := make([]string, 0, len(objs))
	for _, o := range objs {
		if o.Name != "" {
			out = append(out, o.Name)
		}
	}
	*t = out
	return nil
}

// TopicID returns the canonical work item id of a topic.
func TopicID(id int) string { return strconv.Itoa(id) }

func (c *Client) workItem(t topicStub) types.WorkItem {
	return types.WorkItem{
		ID:             TopicID(t.ID),
		Source:         types.SourceForum,
		Title:          t.Title,
		Slug:           t.Slug,
		Tags:           []string(t.Tags),
		AcceptedAnswer: t.HasAcceptedAnswer,
		CategoryID:     t.CategoryID,
		URL:            c.TopicURL(t.Slug, t.ID),
	}
}
