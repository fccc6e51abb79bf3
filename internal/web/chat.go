package web

import (
	"errors"
	"net/http"

	"github.com/starfederation/datastar-go/datastar"
	"k8s.io/klog/v2"

	"todo-dashboard/internal/chat"
)

type chatSignals struct {
	ChatInput string `json:"chatInput"`
}

const scrollChat = `(function(){var el=document.getElementById('conversation-area');if(el){el.scrollTop=el.scrollHeight;}})()`

func (s *Server) patchChat(sse *datastar.ServerSentEventGenerator) {
	html, err := s.renderChat()
	if err != nil {
		klog.Errorf("web: render chat: %v", err)
		return
	}
	_ = sse.PatchElements(html, datastar.WithSelector("#chat-messages"), datastar.WithMode(datastar.ElementPatchModeOuter))
	_ = sse.ExecuteScript(scrollChat)
}

// handleChatSend blocks until the agent answers; the chat stream shows the
// pending state meanwhile.
func (s *Server) handleChatSend(w http.ResponseWriter, r *http.Request) {
	var sig chatSignals
	if err := datastar.ReadSignals(r, &sig); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	sse := datastar.NewSSE(w, r)

	if s.session.Busy() {
		return
	}
	_ = sse.MarshalAndPatchSignals(map[string]any{"chatInput": "", "chatBusy": true})

	_, err := s.session.Send(r.Context(), sig.ChatInput)
	if err != nil && !errors.Is(err, chat.ErrEmptyMessage) && !errors.Is(err, chat.ErrBusy) {
		klog.V(2).Infof("web: chat: %v", err)
	}
	_ = sse.MarshalAndPatchSignals(map[string]any{"chatBusy": false})
	s.patchChat(sse)
}

func (s *Server) handleChatClear(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)
	s.session.Clear()
	s.patchChat(sse)
}
