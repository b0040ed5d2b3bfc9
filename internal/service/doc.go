// Package service provides application-level services for managing problems,
// practice sessions, and review submissions. Services orchestrate the domain
// logic, the scheduler, and the persistence layer; handlers never touch
// stores directly.
package service
