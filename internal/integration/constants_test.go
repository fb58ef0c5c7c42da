package integration_test

const (
	// User related constants
	TestUserId        = 1
	TestStaffId       = 2
	TestUserFirstName = "John"
	TestUserLastName  = "Doe"
	TestUserEmail     = "test@example.com"
	TestStaffEmail    = "staff@example.com"
	TestUserPassword  = "Test123!@#"

	// Fixture ids from testdata/theatre_up.sql
	TestHallId             = 1
	TestPlayId             = 1
	TestPerformanceId      = 1
	TestOtherPerformanceId = 2
)
