package http

import (
	"encoding/json"

	"github.com/relaychat/relaychat-server/internal/core"
	"github.com/relaychat/relaychat-server/internal/proto"
)

func inboundToCommand(inbound proto.Inbound) (*core.Command, *proto.Error, error) {
	switch inbound.Type {
	case proto.InboundTypeLogin:
		var login proto.LoginData
		if err := json.Unmarshal(inbound.Data, &login); err != nil {
			return nil, nil, err
		}
		return &core.Command{
			Kind:  core.CommandLogin,
			Token: login.Token,
		}, nil, nil
	case proto.InboundTypeMsg:
		var msg proto.MsgData
		if err := json.Unmarshal(inbound.Data, &msg); err != nil {
			return nil, nil, err
		}
		return &core.Command{
			Kind:    core.CommandSendMessage,
			Content: msg.Content,
		}, nil, nil
	case proto.InboundTypePrivateMsg:
		var msg proto.PrivateMsgData
		if err := json.Unmarshal(inbound.Data, &msg); err != nil {
			return nil, nil, err
		}
		// An empty receiver resolves to no sessions in the hub, which is
		// handled there; no need to special-case it here.
		return &core.Command{
			Kind:     core.CommandSendPrivateMessage,
			Receiver: msg.Receiver,
			Content:  msg.Content,
		}, nil, nil
	default:
		return nil, &proto.Error{Reason: string(core.ErrCodeNotSupported)}, nil
	}
}

func outboundFromEvent(event *core.Event) proto.Outbound {
	switch event.Kind {
	case core.EventBroadcast:
		return proto.Outbound{
			Type: proto.OutboundTypeMessage,
			Data: proto.ChatMessage{
				AuthorID:   event.AuthorID,
				AuthorName: event.AuthorName,
				Content:    event.Content,
			},
		}
	case core.EventPrivateMessage:
		return proto.Outbound{
			Type: proto.OutboundTypePrivateMessage,
			Data: proto.ChatMessage{
				AuthorID:   event.AuthorID,
				AuthorName: event.AuthorName,
				Content:    event.Content,
			},
		}
	case core.EventLoginSuccess:
		return proto.Outbound{
			Type: proto.OutboundTypeSuccess,
		}
	case core.EventError:
		return proto.Outbound{
			Type:  proto.OutboundTypeError,
			Error: protoError(event.Error),
		}
	default:
		return proto.Outbound{
			Type:  proto.OutboundTypeError,
			Error: &proto.Error{Reason: string(core.ErrCodeInternal)},
		}
	}
}

func protoError(cerr *core.ClientError) *proto.Error {
	if cerr == nil {
		return &proto.Error{Reason: string(core.ErrCodeInternal)}
	}
	pe := &proto.Error{Reason: string(cerr.Code)}
	if cerr.Code == core.ErrCodeInvalidCharacter {
		pe.Char = string(cerr.Char)
	}
	return pe
}
