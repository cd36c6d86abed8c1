// Package engine holds the in-process engines behind the gateway: a dialogue
// engine, a task engine and a flow engine. All three are simulations that
// return canned text or graphs. When engines are disabled, Load hands out
// dummies that report the functionality as unavailable.
package engine
