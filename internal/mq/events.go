package mq

import (
	"context"
	"encoding/json"

	"github.com/plainpress/server/types"
)

const (
	attrEventType = "event_type"
	attrArticleID = "article_id"
)

// ArticlePublisher publishes article change events to one channel.
type ArticlePublisher struct {
	mq      *MQ
	channel string
}

func NewArticlePublisher(mq *MQ, channel string) *ArticlePublisher {
	return &ArticlePublisher{mq: mq, channel: channel}
}

// PublishArticleEvent encodes the event as JSON and publishes it.
func (p *ArticlePublisher) PublishArticleEvent(ctx context.Context, event types.ArticleEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	_, err = p.mq.Publish(ctx, p.channel, data, map[string]string{
		attrEventType: string(event.Type),
		attrArticleID: event.ArticleID,
	})
	return err
}

// SubscribeArticleEvents decodes events from channel and hands them to fn.
// Messages that are not valid events are acknowledged and dropped.
func SubscribeArticleEvents(ctx context.Context, mq *MQ, channel string, fn func(context.Context, types.ArticleEvent) error) error {
	return mq.Subscribe(ctx, channel, func(ctx context.Context, msg Message) error {
		var event types.ArticleEvent
		if err := json.Unmarshal(msg.Data, &event); err != nil {
			return nil
		}
		return fn(ctx, event)
	})
}
