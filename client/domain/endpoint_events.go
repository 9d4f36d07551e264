package domain

type endpointEventKind uint8

const (
	// unknown
	unknown endpointEventKind = iota

	// I/O
	evReadError  // 受信に失敗した
	evWriteError // 送信に失敗した

	// ctrl
	evIdle // 受信が途絶えた
)

func (k endpointEventKind) String() string {
	switch k {
	case evReadError:
		return "read_error"
	case evWriteError:
		return "write_error"
	case evIdle:
		return "idle"
	default:
		return "unknown"
	}
}

type endpointEvent struct {
	kind endpointEventKind
	err  error
}

// inboundKind はループスレッドに配送する受信アイテムの種別です。
type inboundKind uint8

const (
	inJoined inboundKind = iota + 1
	inMessage
	inState
)

type inboundItem struct {
	kind    inboundKind
	joined  JoinedEvent
	message Inbound
	state   StateDelta
}
