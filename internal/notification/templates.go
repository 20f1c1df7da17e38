package notification

import "html/template"

var adminNotificationTmpl = template.Must(template.New("admin_notification").Parse(`<!DOCTYPE html>
<html><body style="font-family:Arial,sans-serif">
<h2>New {{.Entity.EntityType}} registration</h2>
<p>A new entity is waiting for verification.</p>
<table>
<tr><td><b>Name</b></td><td>{{.Entity.Name}}</td></tr>
<tr><td><b>Type</b></td><td>{{.Entity.EntityType}}</td></tr>
<tr><td><b>Email</b></td><td>{{.Entity.Email}}</td></tr>
{{if .Entity.Website}}<tr><td><b>Website</b></td><td>{{.Entity.Website}}</td></tr>{{end}}
{{with .Entity.ContactInfo}}{{if .Phone}}<tr><td><b>Phone</b></td><td>{{.Phone}}</td></tr>{{end}}{{if .Telegram}}<tr><td><b>Telegram</b></td><td>{{.Telegram}}</td></tr>{{end}}{{end}}
</table>
{{if .AdminURL}}<p><a href="{{.AdminURL}}">Review pending registrations</a></p>{{end}}
</body></html>`))

var welcomeTmpl = template.Must(template.New("welcome").Parse(`<!DOCTYPE html>
<html><body style="font-family:Arial,sans-serif">
<h2>Welcome to AdBond, {{.Entity.Name}}!</h2>
<p>Your {{.Entity.EntityType}} registration has been approved and an account was created for you.</p>
<table>
<tr><td><b>Login email</b></td><td>{{.User.Email}}</td></tr>
<tr><td><b>Temporary password</b></td><td><code>{{.TempPassword}}</code></td></tr>
</table>
<p style="color:#b00020"><b>Important:</b> this temporary password expires in {{.ExpiresIn}}. You will be asked to set a new password on first login.</p>
{{if .LoginURL}}<p><a href="{{.LoginURL}}">Log in to AdBond</a></p>{{end}}
</body></html>`))

var rejectionTmpl = template.Must(template.New("rejection").Parse(`<!DOCTYPE html>
<html><body style="font-family:Arial,sans-serif">
<h2>Your AdBond registration</h2>
<p>Hello {{.Entity.Name}},</p>
<p>After review, we are unable to approve your {{.Entity.EntityType}} registration at this time.</p>
{{if .Notes}}<p><b>Reviewer notes:</b> {{.Notes}}</p>{{end}}
<p>You are welcome to contact us or register again with updated information.</p>
</body></html>`))
