package mailing

import (
	"bytes"
	"html/template"
)

type OrderLine struct {
	ProductName string
	Quantity    int
	Unit        string
	Price       string
	Subtotal    string
}

type OrderMail struct {
	RecipientName   string
	OrderNumber     string
	DeliveryAddress string
	PaymentMethod   string
	PaymentURL      string
	Total           string
	Lines           []OrderLine
}

var orderConfirmationTemplate = template.Must(template.New("order_confirmation").Parse(`
<p>Hi {{.RecipientName}},</p>
<p>Thank you for your order <strong>{{.OrderNumber}}</strong>.</p>
<table>
	<tr><th>Product</th><th>Qty</th><th>Price</th><th>Subtotal</th></tr>
	{{range .Lines}}<tr><td>{{.ProductName}}</td><td>{{.Quantity}} {{.Unit}}</td><td>{{.Price}}</td><td>{{.Subtotal}}</td></tr>
	{{end}}
</table>
<p>Total: <strong>{{.Total}}</strong></p>
<p>Delivery address: {{.DeliveryAddress}}</p>
<p>Payment method: {{.PaymentMethod}}</p>
{{if .PaymentURL}}<p><a href="{{.PaymentURL}}">Complete your payment</a></p>{{end}}
`))

var newOrderNoticeTemplate = template.Must(template.New("new_order_notice").Parse(`
<p>Hi {{.RecipientName}},</p>
<p>You have received new items in order <strong>{{.OrderNumber}}</strong>.</p>
<ul>
	{{range .Lines}}<li>{{.Quantity}} {{.Unit}} {{.ProductName}} ({{.Subtotal}})</li>
	{{end}}
</ul>
<p>Deliver to: {{.DeliveryAddress}}</p>
`))

func RenderOrderConfirmation(data OrderMail) (string, error) {
	return render(orderConfirmationTemplate, data)
}

func RenderNewOrderNotice(data OrderMail) (string, error) {
	return render(newOrderNoticeTemplate, data)
}

func render(t *template.Template, data OrderMail) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
