package wire

// Array bounds shared with the C++ side.
const (
	InterestLevels = 20 // depth levels per side in a market update
	MaxSymbolSize  = 50
	MaxAccountID   = 10
	MaxInstrName   = 32
	MaxTradeID     = 21
	MaxProductSize = 32
)

// Plain C++ enums compile to int32 under GCC x86-64; the char-backed ones to
// int8. The numeric values below are the contract and never change.

// RequestType selects the order gateway operation.
type RequestType int32

const (
	ReqNewOrder RequestType = iota
	ReqModifyOrder
	ReqCancelOrder
	ReqOrderStatus
	ReqSessionMsg
	ReqHeartbeat
	ReqOptExec
	ReqOptExecCancel
)

// OrderType is the price mechanism of an order.
type OrderType int32

const (
	OrdLimit OrderType = iota + 1
	OrdMarket
	OrdWeightAvg
	OrdCondLimitPrice
	OrdBestPrice
)

// OrderDuration is the time-in-force.
type OrderDuration int32

const (
	DurDay OrderDuration = iota
	DurIOC
	DurFOK
	DurCounter
	DurFAK
)

// PriceType qualifies how Price is quoted.
type PriceType int32

const (
	PxPercentage PriceType = 1
	PxPerUnit    PriceType = 2
	PxYield      PriceType = 9
)

// PositionDirection distinguishes opening from closing positions.
type PositionDirection int32

const (
	PosOpen PositionDirection = iota + 10
	PosClose
	PosCloseIntraday
	PosError
)

// ResponseType classifies an order response.
type ResponseType int32

const (
	RespNewOrderConfirm ResponseType = iota
	RespNewOrderFreeze
	RespModifyConfirm
	RespCancelConfirm
	RespTradeConfirm
	RespOrderError
	RespModifyReject
	RespCancelReject
	RespORSReject
	RespRMSReject
	RespSimReject
	RespBusinessReject
	RespModifyPending
	RespCancelPending
	RespOrdersPerDayLimitReject
	RespOrdersPerDayLimitWarning
	RespOrderExpired
	RespStopLossWarning
	RespNull
)

// SubResponseType refines rejects coming from the middle layer.
type SubResponseType int32

const (
	SubRespNull SubResponseType = iota
	SubRespOrderReject
	SubRespModifyReject
	SubRespCancelReject
)

// OpenCloseType is char-backed in C++.
type OpenCloseType int8

const (
	OCNull OpenCloseType = iota
	OCOpen
	OCClose
	OCCloseToday
)

// TsExchangeID is the char-backed exchange identifier on order responses.
type TsExchangeID int8

const (
	ExchNull TsExchangeID = iota
	ExchSHFE
	ExchINE
	ExchCZCE
	ExchDCE
	ExchCFFEX
	ExchGFEX
)

// ExchangeType is the venue routing enum carried on requests.
type ExchangeType int32

const (
	ExTypeNSEFO ExchangeType = iota
	ExTypeNSECM
	ExTypeNSECDS
	ExTypeMICEXFond
	ExTypeMICEXCurr
	ExTypeMCX
	ExTypeCME
	ExTypeLME
	ExTypeNYSE
	ExTypeARCA
	ExTypeNotNSE
	ExTypeRequestMsgExchg
	ExTypeResponseMsgExchg
)

// Single-byte exchange codes stamped on market update headers.
const (
	ExchangeCodeUnknown uint8 = 0
	ExchangeCodeSHFE    uint8 = 57
	ExchangeCodeCFFEX   uint8 = 58
	ExchangeCodeZCE     uint8 = 59
	ExchangeCodeDCE     uint8 = 60
	ExchangeCodeGFEX    uint8 = 61
)

// Side and feed bytes on market updates.
const (
	SideBuy  uint8 = 'B'
	SideSell uint8 = 'S'

	FeedTickByTick uint8 = 'X'
	FeedSnapshot   uint8 = 'W'
)
