package docs

// @title           Booking Service API
// @version         1.0
// @description     Booking service owns the booking lifecycle: careseekers create booking requests, caregivers accept, complete or cancel them. Pricing is derived from the caregiver's hourly rate.
// @termsOfService  http://swagger.io/terms/

// @contact.name   API Support
// @contact.url    http://www.swagger.io/support
// @contact.email  support@swagger.io

// @license.name  Apache 2.0
// @license.url   http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:3000
// @BasePath  /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
