// Package ics はイベント一覧をiCalendar（RFC 5545）形式で出力する。
package ics
