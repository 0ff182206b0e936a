package constants

const (
	AccountIDRequired        = "accountId cannot be null."
	ExpressionRequired       = "expression cannot be null."
	InvalidExpression        = "The provided expression is not a valid arithmetic operation."
	DebitFailedFallback      = "Unknown error from Debit API"
	DebitErrorUnparseable    = "Error parsing error response from Debit API."
	ProfileFetchFailed       = "Failed to retrieve user profile."
	AccountNotFound          = "Account with ID %s not found."
	ListOfIDsRequired        = "A list of IDs is required."
	RecordsNotFoundOrDeleted = "One or more records not found or already deleted."
	RequestBodyRequired      = "Request body is required."
	InvalidRequestBody       = "The request body is invalid."
	InvalidToken             = "Invalid token."
	TokenExpired             = "Token expired."
	EndpointNotFound         = "The requested endpoint was not found."
	InternalServerError      = "An internal server error occurred."
	NoOperationsFound        = "No operations were found."
	OperationAdded           = "Operation was successfully added."
	OperationNotSaved        = "The operation could not be saved."
	RandomStringFailed       = "random string service returned status %d"
)
