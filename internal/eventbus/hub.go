package eventbus

import (
	"context"
	"sync"
	"time"
)

// 推送给 SSE 客户端的事件类型
const (
	TypeQuestionAdded     = "question_added"
	TypeCompletionToggled = "completion_toggled"
	TypeStreakUpdated     = "streak_updated"
	TypeTopicAdded        = "topic_added"
	TypeContestAdded      = "contest_added"
)

type Event struct {
	Type      string         `json:"type"`
	UserID    string         `json:"-"`
	Timestamp int64          `json:"timestamp"`
	Data      map[string]any `json:"data,omitempty"`
}

// Hub 进程内广播，订阅方按用户过滤
type Hub struct {
	mu   sync.RWMutex
	subs map[chan Event]string
}

func NewHub() *Hub {
	return &Hub{subs: make(map[chan Event]string)}
}

func (h *Hub) Publish(evt Event) {
	if h == nil {
		return
	}
	if evt.Timestamp == 0 {
		evt.Timestamp = time.Now().UnixMilli()
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for ch, userID := range h.subs {
		if userID != "" && userID != evt.UserID {
			continue
		}
		select {
		case ch <- evt:
		default:
			// 慢消费者直接丢弃，不阻塞写请求
		}
	}
}

// Subscribe 订阅某个用户的事件；userID 为空时接收全部。ctx 结束后通道关闭。
func (h *Hub) Subscribe(ctx context.Context, userID string, buffer int) <-chan Event {
	if buffer <= 0 {
		buffer = 16
	}
	ch := make(chan Event, buffer)

	h.mu.Lock()
	h.subs[ch] = userID
	h.mu.Unlock()

	go func() {
		<-ctx.Done()
		h.mu.Lock()
		delete(h.subs, ch)
		h.mu.Unlock()
		close(ch)
	}()

	return ch
}

// Subscribers 当前订阅数
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}
