package http

import (
	"encoding/json"

	"github.com/pairchat/pairchat-server/internal/core"
	"github.com/pairchat/pairchat-server/internal/proto"
)

func inboundToCommand(inbound proto.Inbound) (*core.Command, *proto.Error, error) {
	switch inbound.Type {
	case proto.InboundTypeJoinChat:
		var join proto.JoinChatData
		if err := json.Unmarshal(inbound.Data, &join); err != nil {
			return nil, nil, err
		}
		return &core.Command{
			Kind:       core.CommandJoinChat,
			ReceiverID: join.ReceiverID,
			UserID:     join.CurrentUserID,
			Username:   join.CurrentUsername,
		}, nil, nil
	case proto.InboundTypeLeaveChat:
		var leave proto.LeaveChatData
		if err := json.Unmarshal(inbound.Data, &leave); err != nil {
			return nil, nil, err
		}
		return &core.Command{
			Kind:       core.CommandLeaveChat,
			ReceiverID: leave.ReceiverID,
			UserID:     leave.CurrentUserID,
		}, nil, nil
	case proto.InboundTypeSendMessage:
		var msg proto.SendMessageData
		if err := json.Unmarshal(inbound.Data, &msg); err != nil {
			return nil, nil, err
		}
		return &core.Command{
			Kind:       core.CommandSendMessage,
			ReceiverID: msg.ReceiverID,
			UserID:     msg.CurrentUserID,
			Username:   msg.CurrentUsername,
			Text:       msg.Text,
		}, nil, nil
	case proto.InboundTypeClearChat:
		var clear proto.ClearChatData
		if err := json.Unmarshal(inbound.Data, &clear); err != nil {
			return nil, nil, err
		}
		return &core.Command{
			Kind:       core.CommandClearChat,
			ReceiverID: clear.ReceiverID,
			UserID:     clear.CurrentUserID,
			Username:   clear.CurrentUsername,
		}, nil, nil
	default:
		return nil, &proto.Error{Code: "invalid_message", Message: "unknown message type"}, nil
	}
}

func outboundFromEvent(event *core.Event) proto.Outbound {
	switch event.Kind {
	case core.EventNewMessage:
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: proto.EventNameNewMessage,
			Data: proto.EventNewMessage{
				ID:             event.Message.ID,
				SenderID:       event.Message.SenderID,
				SenderUsername: event.Message.SenderUsername,
				ReceiverID:     event.Message.ReceiverID,
				Text:           event.Message.Text,
				Timestamp:      event.Message.CreatedAt.UTC().Format(proto.TimestampFormat),
			},
		}
	case core.EventChatCleared:
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: proto.EventNameChatCleared,
			Data: proto.EventChatCleared{
				ClearedBy: event.Cleared.ClearedBy,
				Timestamp: event.Cleared.ClearedAt.UTC().Format(proto.TimestampFormat),
			},
		}
	case core.EventError:
		if event.Error == nil {
			return proto.Outbound{Type: proto.OutboundTypeError, Error: &proto.Error{Code: "unknown", Message: "unknown error"}}
		}
		return proto.Outbound{
			Type:  proto.OutboundTypeError,
			Error: &proto.Error{Code: event.Error.Code, Message: event.Error.Message},
		}
	default:
		return proto.Outbound{Type: proto.OutboundTypeEvent}
	}
}
