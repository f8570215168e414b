package client

// PlayerID 被控制玩家的标识，会话期间不变
type PlayerID string

// Viewport 宿主（终端/页面）报告的可视区域，仅用于展示与遥测
type Viewport struct {
	Width  int
	Height int
}

// Session 启动时读取一次的只读快照
type Session struct {
	PlayerID PlayerID
	Viewport Viewport
}

func NewSession(id PlayerID, vp Viewport) (Session, error) {
	if id == "" {
		return Session{}, ErrEmptyPlayerID
	}
	return Session{PlayerID: id, Viewport: vp}, nil
}
