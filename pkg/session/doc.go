/*
Package session manages the live editors of many quizzes.

It keeps one editor.Editor per quiz id, loads and saves quizzes through a
ports.QuizStore using the codec record format, and serialises access to each
quiz with an in-process lock plus an optional distributed lock so several
replicas can share one store.
*/
package session
