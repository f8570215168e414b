package protocol

import "encoding/json"

// 客户端 → 玩家状态服务的 JSON 载荷，两种形态按部署二选一
//
// 连续模式：{"commands":[{"m":"setVelocity","v":1},{"m":"setRotation","v":3.14}]}
// 离散模式：{"action":"move","dx":0,"dy":-1} 或 {"action":"respawn"}

// 命令名（commands 形态中的 m 字段）
const (
	MethodSetVelocity = "setVelocity"
	MethodSetRotation = "setRotation"
	MethodRespawn     = "respawn"
)

// 动作名（action 形态中的 action 字段）
const (
	ActionMove    = "move"
	ActionRespawn = "respawn"
)

// CommandsBody 连续模式载荷；数组顺序即服务端应用顺序
type CommandsBody struct {
	Commands []Command `json:"commands"`
}

type Command struct {
	M string  `json:"m"`
	V float64 `json:"v"`
}

// MarshalJSON respawn 不带参数，省略 v；其余命令的 v 即使为 0 也要写出
func (c Command) MarshalJSON() ([]byte, error) {
	if c.M == MethodRespawn {
		return json.Marshal(struct {
			M string `json:"m"`
		}{c.M})
	}
	type plain Command
	return json.Marshal(plain(c))
}

// ActionBody 离散模式载荷，每次请求只携带一个动作
type ActionBody struct {
	Action string `json:"action"`
}

// MoveBody 离散移动，dx/dy 总是同时出现
type MoveBody struct {
	Action string `json:"action"`
	DX     int    `json:"dx"`
	DY     int    `json:"dy"`
}

// Envelope 服务端解码用：同时容纳两种形态，由哪个字段非空决定
type Envelope struct {
	Commands []Command `json:"commands,omitempty"`
	Action   string    `json:"action,omitempty"`
	DX       int       `json:"dx,omitempty"`
	DY       int       `json:"dy,omitempty"`
}

// PlayerState 为推送给客户端的轻量状态
type PlayerState struct {
	ID        string  `json:"id"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Velocity  float64 `json:"velocity"`
	Direction float64 `json:"direction"`
	Dead      bool    `json:"dead"`
}
