package sentiment

var BuildResponseSchema = buildResponseSchema
