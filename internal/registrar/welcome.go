package registrar

import "encoding/json"

// welcomeCard is sent once when a user opens the conversation. Each Action.Submit
// carries the same command text a user could type.
var welcomeCard = json.RawMessage(`{
  "type": "AdaptiveCard",
  "$schema": "http://adaptivecards.io/schemas/adaptive-card.json",
  "version": "1.4",
  "body": [
    {"type": "TextBlock", "text": "Hi! I'm your alert assistant", "weight": "Bolder", "size": "Medium"},
    {"type": "TextBlock", "text": "I'll forward alerts to you here. Use the buttons below or type a command to control notifications.", "wrap": true}
  ],
  "actions": [
    {"type": "Action.Submit", "title": "Stop Notifications", "data": {"command": "stop notifications"}},
    {"type": "Action.Submit", "title": "Start Notifications", "data": {"command": "start notifications"}},
    {"type": "Action.Submit", "title": "Snooze 24 Hours", "data": {"command": "snooze for 24 hours"}},
    {"type": "Action.Submit", "title": "Snooze 1 Hour", "data": {"command": "snooze for 1 hour"}},
    {"type": "Action.Submit", "title": "Resume Now", "data": {"command": "resume now"}}
  ]
}`)

const setupFailedText = "Sorry, something went wrong while setting up notifications. Please try again later."
