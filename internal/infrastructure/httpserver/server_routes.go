package httpserver

func (s *Server) setupRoutes() {
	s.echo.GET("/health", s.healthCheck)
	s.echo.GET("/metrics", s.metricsEndpoint)

	api := s.echo.Group("/api/v1")

	auth := api.Group("/auth")
	auth.POST("/register", s.register)
	auth.POST("/login", s.login)
	auth.POST("/send-otp", s.sendOTP)
	auth.POST("/verify-otp", s.verifyOTP)

	properties := api.Group("/properties")
	properties.GET("", s.listProperties)
	properties.GET("/:id", s.getProperty)

	protected := api.Group("")
	protected.Use(s.middleware.JWT.RequireJWT())

	protected.GET("/users/me", s.getOwnProfile)

	ownProperties := protected.Group("/properties")
	ownProperties.POST("", s.createProperty)
	ownProperties.PUT("/:id", s.updateProperty)
	ownProperties.DELETE("/:id", s.deleteProperty)
}
