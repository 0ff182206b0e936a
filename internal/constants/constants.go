package constants

// Operator codes as stored in operation_type.operator_code.
const (
	OperatorAddition       = "addition"
	OperatorSubtraction    = "subtraction"
	OperatorMultiplication = "multiplication"
	OperatorDivision       = "division"
	OperatorExponentiation = "exponentiation"
	OperatorSquareRoot     = "square_root"
	OperatorRandomString   = "random_string"
)

// RandomStringExpression is the literal expression that asks for a random string instead of arithmetic.
const RandomStringExpression = "random_string"

// Record types shown in listings.
const (
	TypeRandomString = "Random String"
	TypeArithmetic   = "Arithmetic Operation"
)

// Routes served by the HTTP front door.
const (
	RouteHealth     = "/operation/health"
	RouteTypes      = "/operation/types"
	RouteRecords    = "/operation/records"
	RouteDashboard  = "/operation/dashboard"
	RouteMetrics    = "/metrics"
	DefaultPage     = 0
	DefaultPageSize = 10
)
